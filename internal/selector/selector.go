// Package selector implements the C3 Selector: a stateful greedy playlist
// builder with a pluggable ranking Strategy.
//
// Grounded on original_source/src/autodj/generate/selector.py (the filter
// chain and the greedy build loop) and on the Strategy-struct shape of
// other_examples/YakDriver-magicmix's internal/strategy/default.go, though
// the ranking algorithm itself follows spec.md §4.3/§9 exactly rather than
// magicmix's own heuristic.
package selector

import (
	"sort"

	"github.com/maxime-c16/autodj-headless/internal/camelot"
	"github.com/maxime-c16/autodj-headless/internal/energy"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

// Mode names the ranking strategy, matching the CLI's --mode flag values.
type Mode string

const (
	Balanced    Mode = "balanced"
	EnergyCurve Mode = "energy_curve"
)

// Constraints mirrors the subset of appconfig.Config the Selector reads.
type Constraints struct {
	BPMTolerancePercent     float64
	EnergyWindowSize        int
	MinTrackDurationSeconds float64
	MaxRepeatDecayHours     float64
}

// RecentUsageFunc returns how many hours ago trackID was last used, with
// found set to false if it has no recent usage within the lookup window.
type RecentUsageFunc func(trackID string) (hoursAgo float64, found bool)

// Strategy ranks candidates for the next pick. progress is the mix's
// completion fraction in [0,1]; Balanced ignores it, EnergyCurve uses it
// to target a progress-dependent energy level.
type Strategy interface {
	Rank(current track.Track, candidates []track.Track, rest []track.Track, progress float64, c Constraints) []track.Track
}

// NewStrategy resolves a Mode to its Strategy implementation.
func NewStrategy(mode Mode) Strategy {
	if mode == EnergyCurve {
		return energyCurveStrategy{}
	}
	return balancedStrategy{}
}

// balancedStrategy picks the first valid candidate in library insertion
// order, with no sort. spec.md §9 marks this exactly: "insertion order of
// the library snapshot is load-bearing" — do not introduce any ordering
// here, even one that looks harmless.
type balancedStrategy struct{}

func (balancedStrategy) Rank(_ track.Track, candidates []track.Track, _ []track.Track, _ float64, _ Constraints) []track.Track {
	return candidates
}

// energyCurveStrategy ranks candidates by distance to a target-energy
// function of mix progress, per spec.md §9's piecewise curve: intro ramp,
// build, peak plateau, comedown.
type energyCurveStrategy struct{}

func (energyCurveStrategy) Rank(current track.Track, candidates []track.Track, rest []track.Track, progress float64, c Constraints) []track.Track {
	target := targetEnergy(progress)

	ranked := make([]track.Track, len(candidates))
	copy(ranked, candidates)

	scores := make(map[string]float64, len(ranked))
	for _, cand := range ranked {
		scores[cand.ID] = energy.Distance(target, trackEnergy(cand))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] < scores[ranked[j].ID]
	})
	return ranked
}

// targetEnergy implements the piecewise progress->energy curve:
// intro [0,0.3) 0.3->0.5, build [0.3,0.5) 0.5->0.8, peak [0.5,0.7) 0.8,
// comedown [0.7,1.0] 0.8->0.4.
func targetEnergy(progress float64) float64 {
	switch {
	case progress < 0.3:
		return lerp(0.3, 0.5, progress/0.3)
	case progress < 0.5:
		return lerp(0.5, 0.8, (progress-0.3)/0.2)
	case progress < 0.7:
		return 0.8
	default:
		frac := (progress - 0.7) / 0.3
		if frac > 1 {
			frac = 1
		}
		return lerp(0.8, 0.4, frac)
	}
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}

func trackEnergy(t track.Track) float64 {
	return energy.Estimate(t.Energy, t.CueInEnergy, t.CueOutEnergy, t.LoudnessDB, t.BPM)
}

// Selector builds a playlist greedily: extend until target duration,
// max track count, or no compatible successor remains.
type Selector struct {
	strategy    Strategy
	constraints Constraints
	recentUsage RecentUsageFunc
}

func New(mode Mode, c Constraints, recentUsage RecentUsageFunc) *Selector {
	return &Selector{strategy: NewStrategy(mode), constraints: c, recentUsage: recentUsage}
}

// Build runs the greedy selection loop starting from seed, drawing from
// library (which must be in the store's stable insertion order), stopping
// at targetDurationSeconds or maxTracks, whichever comes first, or when no
// compatible successor exists.
func (s *Selector) Build(library []track.Track, seed track.Track, targetDurationSeconds float64, maxTracks int) []track.Track {
	playlist := []track.Track{seed}
	used := map[string]bool{seed.ID: true}
	totalDuration := seed.DurationSeconds

	for totalDuration < targetDurationSeconds && len(playlist) < maxTracks {
		current := playlist[len(playlist)-1]
		candidates := s.filterCandidates(library, current, used)
		if len(candidates) == 0 {
			break
		}

		progress := totalDuration / targetDurationSeconds
		rest := remainingAfter(library, used)
		ranked := s.strategy.Rank(current, candidates, rest, progress, s.constraints)
		next := ranked[0]

		playlist = append(playlist, next)
		used[next.ID] = true
		totalDuration += next.DurationSeconds
	}

	return playlist
}

// filterCandidates applies the filter chain in spec.md §4.3 order: not
// already used in this playlist, not recently used within the repeat
// decay window, BPM-compatible, Camelot-compatible, duration floor.
func (s *Selector) filterCandidates(library []track.Track, current track.Track, used map[string]bool) []track.Track {
	var out []track.Track
	currentKey, _ := camelot.Parse(current.Key)

	for _, cand := range library {
		if used[cand.ID] {
			continue
		}
		if s.recentlyUsed(cand.ID) {
			continue
		}
		if !bpmCompatible(current.BPM, cand.BPM, s.constraints.BPMTolerancePercent) {
			continue
		}
		candKey, _ := camelot.Parse(cand.Key)
		if !camelot.Compatible(currentKey, candKey) {
			continue
		}
		if cand.DurationSeconds < s.constraints.MinTrackDurationSeconds {
			continue
		}
		out = append(out, cand)
	}
	return out
}

func (s *Selector) recentlyUsed(trackID string) bool {
	if s.recentUsage == nil {
		return false
	}
	hoursAgo, found := s.recentUsage(trackID)
	if !found {
		return false
	}
	return hoursAgo < s.constraints.MaxRepeatDecayHours
}

// bpmCompatible implements |bpm(next) - bpm(cur)| <= bpm(cur)*tolerance/100,
// a difference exactly at the bound is compatible, absent BPM always compatible.
func bpmCompatible(current, candidate, tolerancePercent float64) bool {
	if current == 0 || candidate == 0 {
		return true
	}
	tolerance := current * tolerancePercent / 100
	diff := candidate - current
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func remainingAfter(library []track.Track, used map[string]bool) []track.Track {
	var out []track.Track
	for _, t := range library {
		if !used[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
