package selector

import "testing"

import "github.com/maxime-c16/autodj-headless/internal/track"

func mkTrack(id, path string, bpm float64, key string, dur float64) track.Track {
	return track.Track{ID: id, Path: path, BPM: bpm, Key: key, DurationSeconds: dur}
}

func TestBalancedPicksFirstValidInLibraryOrder(t *testing.T) {
	library := []track.Track{
		mkTrack("1", "seed", 120, "8A", 180),
		mkTrack("2", "third-pick-if-sorted", 121, "8A", 180),
		mkTrack("3", "first-if-sorted", 120, "8A", 180),
		mkTrack("4", "also-valid", 120, "9A", 180),
	}

	s := New(Balanced, Constraints{BPMTolerancePercent: 4, MinTrackDurationSeconds: 60, MaxRepeatDecayHours: 168}, nil)
	playlist := s.Build(library, library[0], 500, 10)

	if len(playlist) < 2 {
		t.Fatalf("expected at least 2 tracks, got %d", len(playlist))
	}
	if playlist[1].Path != "third-pick-if-sorted" {
		t.Fatalf("Balanced strategy must pick first valid candidate in insertion order, got %q", playlist[1].Path)
	}
}

func TestFilterExcludesIncompatibleBPM(t *testing.T) {
	library := []track.Track{
		mkTrack("1", "seed", 120, "8A", 180),
		mkTrack("2", "too-fast", 140, "8A", 180),
		mkTrack("3", "within-tolerance", 124, "8A", 180),
	}
	s := New(Balanced, Constraints{BPMTolerancePercent: 4, MinTrackDurationSeconds: 60, MaxRepeatDecayHours: 168}, nil)
	playlist := s.Build(library, library[0], 500, 10)

	if len(playlist) != 2 || playlist[1].Path != "within-tolerance" {
		t.Fatalf("expected only within-tolerance candidate to be picked, got %+v", playlist)
	}
}

func TestBuildStopsWhenNoCompatibleSuccessor(t *testing.T) {
	library := []track.Track{
		mkTrack("1", "seed", 120, "8A", 180),
		mkTrack("2", "incompatible", 200, "3B", 180),
	}
	s := New(Balanced, Constraints{BPMTolerancePercent: 4, MinTrackDurationSeconds: 60, MaxRepeatDecayHours: 168}, nil)
	playlist := s.Build(library, library[0], 3600, 90)

	if len(playlist) != 1 {
		t.Fatalf("expected early termination with just the seed, got %d tracks", len(playlist))
	}
}

func TestRecentlyUsedIsExcluded(t *testing.T) {
	library := []track.Track{
		mkTrack("1", "seed", 120, "8A", 180),
		mkTrack("2", "recently-played", 120, "8A", 180),
		mkTrack("3", "fresh", 120, "8A", 180),
	}
	recent := func(id string) (float64, bool) {
		if id == "2" {
			return 10, true // used 10h ago, inside a 168h decay window
		}
		return 0, false
	}
	s := New(Balanced, Constraints{BPMTolerancePercent: 4, MinTrackDurationSeconds: 60, MaxRepeatDecayHours: 168}, recent)
	playlist := s.Build(library, library[0], 500, 10)

	if len(playlist) != 2 || playlist[1].Path != "fresh" {
		t.Fatalf("expected recently-played track excluded, got %+v", playlist)
	}
}

func TestEnergyCurveRanksByTargetDistance(t *testing.T) {
	e1, e2 := 0.9, 0.35
	library := []track.Track{
		{ID: "1", Path: "seed", BPM: 120, Key: "8A", DurationSeconds: 60, Energy: &e1},
		{ID: "2", Path: "far-from-build-target", BPM: 120, Key: "8A", DurationSeconds: 60, Energy: &e1},
		{ID: "3", Path: "close-to-build-target", BPM: 120, Key: "8A", DurationSeconds: 60, Energy: &e2},
	}
	s := New(EnergyCurve, Constraints{BPMTolerancePercent: 10, MinTrackDurationSeconds: 10, MaxRepeatDecayHours: 168}, nil)
	playlist := s.Build(library, library[0], 180, 10)

	if len(playlist) < 2 || playlist[1].Path != "close-to-build-target" {
		t.Fatalf("expected energy-curve strategy to prefer the closer-to-target candidate, got %+v", playlist)
	}
}
