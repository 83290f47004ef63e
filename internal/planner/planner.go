// Package planner implements the C4 Planner: turning a selected track
// sequence into a transition plan, and emitting both artifacts (the .m3u
// playlist manifest and the .json Mix Plan) atomically.
//
// Grounded on original_source/src/autodj/generate/playlist.py (whose
// top-level generate() was an unfinished stub listing exactly these
// steps) and on the teacher's playlist/playlist.go for M3U I/O idiom
// (backup-before-overwrite, one path per line).
package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
	"github.com/maxime-c16/autodj-headless/internal/clockutil"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

const (
	defaultHoldDurationBars = 16
	defaultEffect           = "smart_crossfade"
)

// TransitionEdge describes the transition from one track to the next.
type TransitionEdge struct {
	TrackIndex       int      `json:"track_index"`
	TrackID          string   `json:"track_id"`
	EntryCue         string   `json:"entry_cue"`
	HoldDurationBars int      `json:"hold_duration_bars"`
	TargetBPM        *float64 `json:"target_bpm"`
	ExitCue          string   `json:"exit_cue"`
	MixOutSeconds    float64  `json:"mix_out_seconds"`
	Effect           string   `json:"effect"`
	NextTrackID      *string  `json:"next_track_id"`
}

// MixPlan is the full transitions.json document.
type MixPlan struct {
	PlaylistID         string           `json:"playlist_id"`
	MixDurationSeconds int              `json:"mix_duration_seconds"`
	GeneratedAt        string           `json:"generated_at"`
	Transitions        []TransitionEdge `json:"transitions"`
}

// Artifacts is the pair of output file paths a successful Plan writes.
type Artifacts struct {
	PlaylistPath    string
	TransitionsPath string
}

// Build turns a selected track sequence into a MixPlan, clamping
// mix_out_seconds to the configured [2,8] render bound. All reserved
// fields (loop_start entry cues, time-stretched target_bpm) are left at
// their spec-mandated current values: entry_cue is always cue_in, target
// bpm is the source bpm unchanged.
func Build(playlistID string, tracks []track.Track, crossfadeSeconds float64) MixPlan {
	crossfade := clamp(crossfadeSeconds, 2, 8)

	var totalDuration float64
	edges := make([]TransitionEdge, 0, len(tracks))
	for i, t := range tracks {
		totalDuration += t.DurationSeconds

		var nextID *string
		if i+1 < len(tracks) {
			id := tracks[i+1].ID
			nextID = &id
		}

		var targetBPM *float64
		if t.BPM > 0 {
			bpm := t.BPM
			targetBPM = &bpm
		}

		edges = append(edges, TransitionEdge{
			TrackIndex:       i,
			TrackID:          t.ID,
			EntryCue:         "cue_in",
			HoldDurationBars: defaultHoldDurationBars,
			TargetBPM:        targetBPM,
			ExitCue:          "cue_out",
			MixOutSeconds:    crossfade,
			Effect:           defaultEffect,
			NextTrackID:      nextID,
		})
	}

	return MixPlan{
		PlaylistID:         playlistID,
		MixDurationSeconds: int(totalDuration),
		Transitions:        edges,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Write emits both artifacts atomically into outputDir: it writes to a
// temp directory first and renames into place, so a partial write never
// leaves a stale or half-written pair behind. On any failure it removes
// both files before returning ArtifactWriteFailed.
func Write(outputDir string, plan MixPlan, tracks []track.Track, clk clockutil.Clock) (Artifacts, error) {
	plan.GeneratedAt = clk.Now().UTC().Format("2006-01-02T15:04:05Z07:00")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "creating output directory", err)
	}

	tmpDir, err := os.MkdirTemp(outputDir, ".tmp-*")
	if err != nil {
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "creating temp directory", err)
	}
	defer os.RemoveAll(tmpDir)

	m3uTmp := filepath.Join(tmpDir, plan.PlaylistID+".m3u")
	jsonTmp := filepath.Join(tmpDir, plan.PlaylistID+".json")

	if err := writeM3U(m3uTmp, tracks); err != nil {
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "writing playlist manifest", err)
	}
	if err := writeJSON(jsonTmp, plan); err != nil {
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "writing mix plan", err)
	}

	m3uFinal := filepath.Join(outputDir, plan.PlaylistID+".m3u")
	jsonFinal := filepath.Join(outputDir, plan.PlaylistID+".json")

	if err := os.Rename(m3uTmp, m3uFinal); err != nil {
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "finalizing playlist manifest", err)
	}
	if err := os.Rename(jsonTmp, jsonFinal); err != nil {
		os.Remove(m3uFinal)
		return Artifacts{}, apperr.Wrap(apperr.ArtifactWriteFailed, "finalizing mix plan", err)
	}

	return Artifacts{PlaylistPath: m3uFinal, TransitionsPath: jsonFinal}, nil
}

func writeM3U(path string, tracks []track.Track) error {
	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		name := strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
		fmt.Fprintf(&sb, "#EXT-INF:%d,%s\n", int(t.DurationSeconds), name)
		sb.WriteString(t.Path + "\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func writeJSON(path string, plan MixPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
