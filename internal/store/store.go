// Package store implements the metadata store contract spec.md §6 assumes
// as an external dependency: list_tracks, recent_usage, append_usage.
// Grounded on original_source/src/autodj/db.py's SQLite schema (tracks,
// playlist_history, schema_version tables and their indices), backed by
// modernc.org/sqlite so the module needs no cgo, the pattern
// other_examples/Fauli-music-janitor and flowpbx-flowpbx both use.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
	"github.com/maxime-c16/autodj-headless/internal/clockutil"
	"github.com/maxime-c16/autodj-headless/internal/track"
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	artist TEXT,
	album TEXT,
	title TEXT,
	genre TEXT,
	bpm REAL,
	key TEXT,
	energy REAL,
	cue_in_energy REAL,
	cue_out_energy REAL,
	loudness_db REAL,
	cue_in REAL,
	cue_out REAL,
	duration_seconds REAL,
	analyzed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS playlist_history (
	id TEXT PRIMARY KEY,
	track_id TEXT NOT NULL REFERENCES tracks(id),
	playlist_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	used_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tracks_bpm ON tracks(bpm);
CREATE INDEX IF NOT EXISTS idx_tracks_key ON tracks(key);
CREATE INDEX IF NOT EXISTS idx_history_track_id ON playlist_history(track_id);
CREATE INDEX IF NOT EXISTS idx_history_used_at ON playlist_history(used_at);
`

const currentSchemaVersion = 1

// Store is the SQLite-backed metadata store.
type Store struct {
	db    *sql.DB
	clock clockutil.Clock
}

// Open opens (creating if absent) the sqlite database at path and ensures
// the schema exists.
func Open(path string, clk clockutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, "opening store", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.StoreUnavailable, "initializing schema", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err == nil && count == 0 {
		db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	}

	return &Store{db: db, clock: clk}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// AddTrack inserts or replaces a track row keyed by path, mirroring
// db.py's add_track (INSERT OR REPLACE semantics). The row's id is a
// deterministic hash of the file's path, mtime and size, matching
// analyze_library.py's _generate_track_id so re-ingesting an unchanged
// file is idempotent.
func (s *Store) AddTrack(ctx context.Context, t track.Track) (string, error) {
	id := deriveTrackID(t.Path)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (id, path, artist, album, title, genre, bpm, key, energy,
			cue_in_energy, cue_out_energy, loudness_db, cue_in, cue_out,
			duration_seconds, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id=excluded.id, artist=excluded.artist, album=excluded.album, title=excluded.title,
			genre=excluded.genre, bpm=excluded.bpm, key=excluded.key,
			energy=excluded.energy, cue_in_energy=excluded.cue_in_energy,
			cue_out_energy=excluded.cue_out_energy, loudness_db=excluded.loudness_db,
			cue_in=excluded.cue_in, cue_out=excluded.cue_out,
			duration_seconds=excluded.duration_seconds, analyzed_at=excluded.analyzed_at
	`,
		id, t.Path, t.Artist, t.Album, t.Title, t.Genre, nullFloat(t.BPM), t.Key,
		t.Energy, t.CueInEnergy, t.CueOutEnergy, t.LoudnessDB, t.CueIn, t.CueOut,
		t.DurationSeconds, s.clock.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, "adding track", err)
	}
	return id, nil
}

// deriveTrackID hashes path:mtime:size into a 16-hex-character id, the
// same key_string shape as analyze_library.py's _generate_track_id. When
// the file isn't accessible (e.g. a path registered ahead of the file
// landing on disk) it falls back to hashing the path alone, so the id
// stays deterministic rather than failing the ingest.
func deriveTrackID(path string) string {
	keyString := path
	if info, err := os.Stat(path); err == nil {
		keyString = fmt.Sprintf("%s:%d:%d", path, info.ModTime().Unix(), info.Size())
	}
	sum := sha256.Sum256([]byte(keyString))
	return hex.EncodeToString(sum[:])[:16]
}

// ListTracks returns tracks matching the optional bpm range and key
// filter, in insertion order (the "stable per-call order, no cross-call
// guarantee" contract spec.md §6 requires and §9 marks load-bearing for
// the Balanced strategy). Ordering by rowid rather than the id column
// keeps that guarantee independent of id being a content hash rather than
// a monotonic integer.
func (s *Store) ListTracks(ctx context.Context, bpmMin, bpmMax float64, key string) ([]track.Track, error) {
	query := "SELECT id, path, artist, album, title, genre, bpm, key, energy, cue_in_energy, cue_out_energy, loudness_db, cue_in, cue_out, duration_seconds, analyzed_at FROM tracks WHERE 1=1"
	args := []any{}

	if bpmMax > 0 {
		query += " AND bpm BETWEEN ? AND ?"
		args = append(args, bpmMin, bpmMax)
	}
	if key != "" {
		query += " AND key = ?"
		args = append(args, key)
	}
	query += " ORDER BY rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, "listing tracks", err)
	}
	defer rows.Close()

	var out []track.Track
	for rows.Next() {
		var t track.Track
		var analyzedAt string
		var bpm, energy, cueInE, cueOutE, loudness sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Path, &t.Artist, &t.Album, &t.Title, &t.Genre,
			&bpm, &t.Key, &energy, &cueInE, &cueOutE, &loudness, &t.CueIn, &t.CueOut,
			&t.DurationSeconds, &analyzedAt); err != nil {
			return nil, apperr.Wrap(apperr.StoreUnavailable, "scanning track row", err)
		}
		if bpm.Valid {
			t.BPM = bpm.Float64
		}
		if energy.Valid {
			v := energy.Float64
			t.Energy = &v
		}
		if cueInE.Valid {
			v := cueInE.Float64
			t.CueInEnergy = &v
		}
		if cueOutE.Valid {
			v := cueOutE.Float64
			t.CueOutEnergy = &v
		}
		if loudness.Valid {
			v := loudness.Float64
			t.LoudnessDB = &v
		}
		if parsed, err := time.Parse(time.RFC3339, analyzedAt); err == nil {
			t.AnalyzedAt = parsed
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecentUsage returns usage records for trackID newer than sinceHours ago,
// newest first, mirroring db.py's get_recent_usage.
func (s *Store) RecentUsage(ctx context.Context, trackID string, sinceHours float64) ([]track.UsageRecord, error) {
	cutoff := s.clock.Now().UTC().Add(-time.Duration(sinceHours * float64(time.Hour)))

	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, playlist_id, position, used_at FROM playlist_history
		WHERE track_id = ? AND used_at > ?
		ORDER BY used_at DESC
	`, trackID, cutoff.Format(time.RFC3339))
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, "reading recent usage", err)
	}
	defer rows.Close()

	var out []track.UsageRecord
	for rows.Next() {
		var rec track.UsageRecord
		var usedAt string
		if err := rows.Scan(&rec.TrackID, &rec.PlaylistID, &rec.Position, &usedAt); err != nil {
			return nil, apperr.Wrap(apperr.StoreUnavailable, "scanning usage row", err)
		}
		rec.UsedAt, _ = time.Parse(time.RFC3339, usedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AppendUsage records a playlist placement. Failure here is surfaced by
// the caller as a non-fatal UsageRecordFailed warning per spec.md §7.
func (s *Store) AppendUsage(ctx context.Context, rec track.UsageRecord) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_history (id, track_id, playlist_id, position, used_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, rec.TrackID, rec.PlaylistID, rec.Position, rec.UsedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return apperr.Wrap(apperr.UsageRecordFailed, "appending usage record", err)
	}
	return nil
}

// Stats mirrors db.py's get_stats(): a small introspection summary
// exposed through the CLI's "store stats" subcommand.
type Stats struct {
	TrackCount       int
	UsageRecordCount int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&st.TrackCount); err != nil {
		return st, apperr.Wrap(apperr.StoreUnavailable, "counting tracks", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlist_history").Scan(&st.UsageRecordCount); err != nil {
		return st, apperr.Wrap(apperr.StoreUnavailable, "counting usage records", err)
	}
	return st, nil
}

// GetTrackByPath looks up a track by its file path, used to resolve the
// --seed CLI flag (a track ID or path) into a library entry.
func (s *Store) GetTrackByPath(ctx context.Context, path string) (track.Track, error) {
	return s.getTrackWhere(ctx, "path = ?", path)
}

// GetTrack looks up a track by its store ID.
func (s *Store) GetTrack(ctx context.Context, id string) (track.Track, error) {
	return s.getTrackWhere(ctx, "id = ?", id)
}

func (s *Store) getTrackWhere(ctx context.Context, where string, arg any) (track.Track, error) {
	var t track.Track
	var analyzedAt string
	var bpm, energy, cueInE, cueOutE, loudness sql.NullFloat64

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT id, path, artist, album, title, genre, bpm, key, energy, cue_in_energy, cue_out_energy, loudness_db, cue_in, cue_out, duration_seconds, analyzed_at FROM tracks WHERE %s", where), arg)

	if err := row.Scan(&t.ID, &t.Path, &t.Artist, &t.Album, &t.Title, &t.Genre,
		&bpm, &t.Key, &energy, &cueInE, &cueOutE, &loudness, &t.CueIn, &t.CueOut,
		&t.DurationSeconds, &analyzedAt); err != nil {
		if err == sql.ErrNoRows {
			return t, apperr.New(apperr.SeedNotFound, fmt.Sprintf("no track matching %v", arg))
		}
		return t, apperr.Wrap(apperr.StoreUnavailable, "looking up track", err)
	}
	if bpm.Valid {
		t.BPM = bpm.Float64
	}
	if energy.Valid {
		v := energy.Float64
		t.Energy = &v
	}
	if cueInE.Valid {
		v := cueInE.Float64
		t.CueInEnergy = &v
	}
	if cueOutE.Valid {
		v := cueOutE.Float64
		t.CueOutEnergy = &v
	}
	if loudness.Valid {
		v := loudness.Float64
		t.LoudnessDB = &v
	}
	t.AnalyzedAt, _ = time.Parse(time.RFC3339, analyzedAt)
	return t, nil
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
