package planner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/maxime-c16/autodj-headless/internal/track"
)

func sampleTracks() []track.Track {
	return []track.Track{
		{ID: "1", Path: "/music/a.mp3", BPM: 120, DurationSeconds: 180},
		{ID: "2", Path: "/music/b.mp3", BPM: 122, DurationSeconds: 200},
	}
}

func TestBuildClampsCrossfade(t *testing.T) {
	plan := Build("autodj-test", sampleTracks(), 1)
	for _, e := range plan.Transitions {
		if e.MixOutSeconds != 2 {
			t.Fatalf("crossfade below floor should clamp to 2, got %v", e.MixOutSeconds)
		}
	}

	plan = Build("autodj-test", sampleTracks(), 20)
	for _, e := range plan.Transitions {
		if e.MixOutSeconds != 8 {
			t.Fatalf("crossfade above ceiling should clamp to 8, got %v", e.MixOutSeconds)
		}
	}
}

func TestBuildFixedCueFields(t *testing.T) {
	plan := Build("autodj-test", sampleTracks(), 4)
	for i, e := range plan.Transitions {
		if e.EntryCue != "cue_in" || e.ExitCue != "cue_out" || e.Effect != "smart_crossfade" {
			t.Fatalf("transition %d has unexpected fixed fields: %+v", i, e)
		}
		if e.HoldDurationBars != defaultHoldDurationBars {
			t.Fatalf("transition %d hold_duration_bars = %d, want %d", i, e.HoldDurationBars, defaultHoldDurationBars)
		}
	}
	if *plan.Transitions[0].NextTrackID != "2" {
		t.Fatalf("first transition next_track_id = %v, want \"2\"", plan.Transitions[0].NextTrackID)
	}
	if plan.Transitions[1].NextTrackID != nil {
		t.Fatalf("last transition next_track_id should be nil, got %v", plan.Transitions[1].NextTrackID)
	}
}

func TestWriteAtomicArtifacts(t *testing.T) {
	dir := t.TempDir()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))

	tracks := sampleTracks()
	plan := Build("autodj-20260304-050607", tracks, 4)

	artifacts, err := Write(dir, plan, tracks, mock)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(artifacts.PlaylistPath); err != nil {
		t.Fatalf("playlist artifact missing: %v", err)
	}
	if _, err := os.Stat(artifacts.TransitionsPath); err != nil {
		t.Fatalf("transitions artifact missing: %v", err)
	}

	m3uData, err := os.ReadFile(artifacts.PlaylistPath)
	if err != nil {
		t.Fatalf("reading m3u: %v", err)
	}
	content := string(m3uData)
	if content[:8] != "#EXTM3U\n"[:8] {
		t.Fatalf("m3u missing header, got %q", content[:20])
	}

	jsonData, err := os.ReadFile(artifacts.TransitionsPath)
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}
	var loaded MixPlan
	if err := json.Unmarshal(jsonData, &loaded); err != nil {
		t.Fatalf("unmarshal mix plan: %v", err)
	}
	if loaded.PlaylistID != "autodj-20260304-050607" {
		t.Fatalf("playlist_id = %q, want autodj-20260304-050607", loaded.PlaylistID)
	}
	if loaded.GeneratedAt == "" {
		t.Fatal("generated_at should not be empty")
	}

	entries, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if len(entries) != 0 {
		t.Fatalf("temp directory leaked: %v", entries)
	}
}
