// Package quality scores a finished Mix Plan for operator visibility. It
// is strictly post-hoc and non-authoritative: nothing here feeds back
// into Selector decisions, which stay purely greedy per spec.md §4.3/§9.
//
// Adapted from the teacher's ga.go (FitnessBreakdown, EdgeData, and the
// applyWeightedPenalty normalization idiom, rewritten around a finished
// sequence instead of a population of candidate orderings) and
// playlist/genre.go (GenreSimilarity and its hierarchy map), which
// spec.md's Track model has no equivalent for.
package quality

import (
	"github.com/maxime-c16/autodj-headless/internal/camelot"
	"github.com/maxime-c16/autodj-headless/internal/energy"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

// Breakdown reports per-transition diagnostics alongside an aggregate
// score, the same shape the teacher's FitnessBreakdown used for a single
// candidate ordering, here applied to the one sequence the Selector built.
type Breakdown struct {
	HarmonicDistanceTotal   int
	EnergyDeltaTotal        float64
	GenreDissimilarityTotal float64
	SameArtistAdjacent      int
	SameAlbumAdjacent       int
}

// Score reports the normalized [0,1] diagnostic score (lower is smoother)
// using the same applyWeightedPenalty(raw, max, weight) idiom ga.go used
// to scale each raw penalty before summing it.
type Score struct {
	Breakdown Breakdown
	Value     float64
}

const (
	maxHarmonicPerTransition    = 2.0
	maxEnergyDeltaPerTransition = 1.0

	weightHarmonic  = 0.4
	weightEnergy    = 0.4
	weightGenre     = 0.1
	weightRepeatArt = 0.05
	weightRepeatAlb = 0.05
)

// Evaluate walks the built sequence and reports a diagnostic breakdown.
func Evaluate(tracks []track.Track) Score {
	var b Breakdown
	if len(tracks) < 2 {
		return Score{Breakdown: b, Value: 0}
	}

	for i := 1; i < len(tracks); i++ {
		prev, cur := tracks[i-1], tracks[i]

		prevKey, _ := camelot.Parse(prev.Key)
		curKey, _ := camelot.Parse(cur.Key)
		b.HarmonicDistanceTotal += camelot.Distance(prevKey, curKey)

		prevEnergy := energy.Estimate(prev.Energy, prev.CueInEnergy, prev.CueOutEnergy, prev.LoudnessDB, prev.BPM)
		curEnergy := energy.Estimate(cur.Energy, cur.CueInEnergy, cur.CueOutEnergy, cur.LoudnessDB, cur.BPM)
		b.EnergyDeltaTotal += energy.Distance(prevEnergy, curEnergy)

		b.GenreDissimilarityTotal += GenreSimilarity(prev.Genre, cur.Genre)
		if prev.Artist != "" && prev.Artist == cur.Artist {
			b.SameArtistAdjacent++
		}
		if prev.Album != "" && prev.Album == cur.Album {
			b.SameAlbumAdjacent++
		}
	}

	transitions := float64(len(tracks) - 1)
	harmonicRaw := float64(b.HarmonicDistanceTotal) / transitions
	energyRaw := b.EnergyDeltaTotal / transitions
	genreRaw := b.GenreDissimilarityTotal / transitions
	artRaw := float64(b.SameArtistAdjacent) / transitions
	albRaw := float64(b.SameAlbumAdjacent) / transitions

	value := applyWeightedPenalty(harmonicRaw, maxHarmonicPerTransition, weightHarmonic) +
		applyWeightedPenalty(energyRaw, maxEnergyDeltaPerTransition, weightEnergy) +
		applyWeightedPenalty(genreRaw, 1.0, weightGenre) +
		applyWeightedPenalty(artRaw, 1.0, weightRepeatArt) +
		applyWeightedPenalty(albRaw, 1.0, weightRepeatAlb)

	return Score{Breakdown: b, Value: value}
}

// applyWeightedPenalty scales a raw value onto [0, weight] relative to
// maxValue, the same normalization the teacher's ga.go used across all of
// its fitness terms so different-scale penalties stay comparable.
func applyWeightedPenalty(rawValue, maxValue, weight float64) float64 {
	if maxValue == 0 {
		return 0
	}
	ratio := rawValue / maxValue
	if ratio > 1 {
		ratio = 1
	}
	return ratio * weight
}
