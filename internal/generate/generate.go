// Package generate wires the C1-C4 core (camelot, energy, selector,
// planner) together with the metadata store into the single "generate a
// mix" operation the CLI's generate subcommand exposes.
//
// Grounded on original_source/src/autodj/generate/playlist.py's unfinished
// generate() stub (seed resolution, build, plan, write, record usage, in
// that order) and on the teacher's common.go InitializePlaylist, which
// plays the analogous "load inputs, build shared context" role ahead of
// the GA run.
package generate

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
	"github.com/maxime-c16/autodj-headless/internal/appconfig"
	"github.com/maxime-c16/autodj-headless/internal/clockutil"
	"github.com/maxime-c16/autodj-headless/internal/planner"
	"github.com/maxime-c16/autodj-headless/internal/quality"
	"github.com/maxime-c16/autodj-headless/internal/selector"
	"github.com/maxime-c16/autodj-headless/internal/store"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

// Store is the subset of *store.Store the pipeline depends on, so tests
// can substitute a fake without touching SQLite.
type Store interface {
	ListTracks(ctx context.Context, bpmMin, bpmMax float64, key string) ([]track.Track, error)
	RecentUsage(ctx context.Context, trackID string, sinceHours float64) ([]track.UsageRecord, error)
	AppendUsage(ctx context.Context, rec track.UsageRecord) error
	GetTrack(ctx context.Context, id string) (track.Track, error)
	GetTrackByPath(ctx context.Context, path string) (track.Track, error)
}

var _ Store = (*store.Store)(nil)

// Options configures one generate call. SeedRef is either empty (pick the
// library's first track, preserving Balanced-mode determinism), the
// literal "random" (pick via RandomSeed, an explicit reproducible PRNG
// seed per spec.md §4.3's determinism clause), a track_id, or a file path.
type Options struct {
	Config     appconfig.Config
	Mode       selector.Mode
	SeedRef    string
	RandomSeed *int64
	OutputDir  string
	Logger     *slog.Logger
	Clock      clockutil.Clock
}

// Result is everything a successful generate call hands back to the CLI.
type Result struct {
	PlaylistID string
	Tracks     []track.Track
	Plan       planner.MixPlan
	Artifacts  planner.Artifacts
	Quality    quality.Score
	// Warning is set when usage recording failed after the artifacts were
	// already durable on disk; spec.md §7 marks this non-fatal.
	Warning error
}

// Run executes one full Analyze-free generate call: resolve the seed,
// build the playlist greedily, plan the transitions, write both
// artifacts, and best-effort record usage. Fatal errors are *apperr.Error
// values from the kinds in spec.md §7.
func Run(ctx context.Context, st Store, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clockutil.Real()
	}

	library, err := st.ListTracks(ctx, 0, 0, "")
	if err != nil {
		return nil, err
	}
	if len(library) == 0 {
		return nil, apperr.New(apperr.LibraryEmpty, "metadata store has no tracks")
	}

	seed, err := resolveSeed(ctx, st, library, opts.SeedRef, opts.RandomSeed)
	if err != nil {
		return nil, err
	}

	c := opts.Config.Constraints
	if seed.DurationSeconds < c.MinTrackDurationSeconds {
		return nil, apperr.New(apperr.SeedTooShort,
			"seed "+seed.Path+" duration "+strconv.FormatFloat(seed.DurationSeconds, 'f', 1, 64)+"s below floor")
	}

	now := clk.Now().UTC()
	recentUsage := func(trackID string) (float64, bool) {
		recs, err := st.RecentUsage(ctx, trackID, c.MaxRepeatDecayHours)
		if err != nil || len(recs) == 0 {
			return 0, false
		}
		hoursAgo := now.Sub(recs[0].UsedAt).Hours()
		return hoursAgo, true
	}

	sel := selector.New(opts.Mode, selector.Constraints{
		BPMTolerancePercent:     c.BPMTolerancePercent,
		EnergyWindowSize:        c.EnergyWindowSize,
		MinTrackDurationSeconds: c.MinTrackDurationSeconds,
		MaxRepeatDecayHours:     c.MaxRepeatDecayHours,
	}, recentUsage)

	targetSeconds := float64(opts.Config.Mix.TargetDurationMinutes) * 60
	playlist := sel.Build(library, seed, targetSeconds, opts.Config.Mix.MaxPlaylistTracks)

	if len(playlist) < 2 {
		return nil, apperr.New(apperr.InsufficientCandidates, "no compatible successor to seed "+seed.Path)
	}

	log.Info("selected playlist", "tracks", len(playlist), "mode", opts.Mode)

	playlistID := nextPlaylistID(clk, opts.OutputDir)
	plan := planner.Build(playlistID, playlist, opts.Config.Render.CrossfadeDurationSeconds)

	artifacts, err := planner.Write(opts.OutputDir, plan, playlist, clk)
	if err != nil {
		return nil, err
	}

	var warning error
	for i, t := range playlist {
		rec := track.UsageRecord{TrackID: t.ID, PlaylistID: playlistID, Position: i, UsedAt: now}
		if err := st.AppendUsage(ctx, rec); err != nil {
			log.Warn("usage record failed", "track_id", t.ID, "error", err)
			warning = err
		}
	}

	return &Result{
		PlaylistID: playlistID,
		Tracks:     playlist,
		Plan:       plan,
		Artifacts:  artifacts,
		Quality:    quality.Evaluate(playlist),
		Warning:    warning,
	}, nil
}

// resolveSeed interprets SeedRef per the Options doc comment. A non-empty
// ref is tried first as a track_id (the spec.md §6 CLI contract), then
// falls back to a file path lookup, a convenience the original's library
// scripts also offer when a caller only knows the path on disk.
func resolveSeed(ctx context.Context, st Store, library []track.Track, ref string, randomSeed *int64) (track.Track, error) {
	switch {
	case ref == "":
		return library[0], nil
	case ref == "random":
		if randomSeed == nil {
			return track.Track{}, apperr.New(apperr.ConfigInvalid, "random seed selection requires an explicit --random-seed value")
		}
		rng := rand.New(rand.NewPCG(uint64(*randomSeed), uint64(*randomSeed)))
		return library[rng.IntN(len(library))], nil
	default:
		if t, err := st.GetTrack(ctx, ref); err == nil {
			return t, nil
		}
		t, err := st.GetTrackByPath(ctx, ref)
		if err != nil {
			return track.Track{}, apperr.Wrap(apperr.SeedNotFound, "seed "+ref, err)
		}
		return t, nil
	}
}

// nextPlaylistID derives the second-precision autodj-YYYYMMDD-HHMMSS id
// and, per SPEC_FULL.md's uuid fallback, disambiguates with a short uuid
// suffix if two generates land in the same output directory within the
// same second.
func nextPlaylistID(clk clockutil.Clock, outputDir string) string {
	id := clockutil.PlaylistID(clk)
	if _, err := os.Stat(filepath.Join(outputDir, id+".json")); err == nil {
		return id + "-" + uuid.NewString()[:8]
	}
	return id
}
