package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

func openTestStore(t *testing.T) (*Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), mock)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mock
}

func TestAddAndListTracks(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddTrack(ctx, track.Track{Path: "/music/a.mp3", BPM: 128, Key: "8A"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	tracks, err := s.ListTracks(ctx, 0, 0, "")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "/music/a.mp3", tracks[0].Path)
}

func TestListTracksPreservesInsertionOrder(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	paths := []string{"/c.mp3", "/a.mp3", "/b.mp3"}
	for _, p := range paths {
		if _, err := s.AddTrack(ctx, track.Track{Path: p, BPM: 120}); err != nil {
			t.Fatalf("AddTrack(%s) error = %v", p, err)
		}
	}

	tracks, err := s.ListTracks(ctx, 0, 0, "")
	require.NoError(t, err)
	require.Len(t, tracks, len(paths))
	for i, want := range paths {
		assert.Equalf(t, want, tracks[i].Path, "insertion order must be preserved at index %d", i)
	}
}

func TestRecentUsageNewestFirstWithinWindow(t *testing.T) {
	s, mock := openTestStore(t)
	ctx := context.Background()

	id, _ := s.AddTrack(ctx, track.Track{Path: "/a.mp3"})

	base := mock.Now()
	old := track.UsageRecord{TrackID: id, PlaylistID: "p1", Position: 0, UsedAt: base.Add(-200 * time.Hour)}
	recent := track.UsageRecord{TrackID: id, PlaylistID: "p2", Position: 1, UsedAt: base.Add(-10 * time.Hour)}

	require.NoError(t, s.AppendUsage(ctx, old))
	require.NoError(t, s.AppendUsage(ctx, recent))

	usage, err := s.RecentUsage(ctx, id, 168)
	require.NoError(t, err)
	require.Len(t, usage, 1, "only the recent record should fall within the 168h window")
	assert.Equal(t, "p2", usage[0].PlaylistID)
}

func TestGetTrackByPathNotFound(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.GetTrackByPath(context.Background(), "/missing.mp3")
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected an *apperr.Error")
	assert.Equal(t, apperr.SeedNotFound, ae.Kind)
}
