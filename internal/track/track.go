// Package track holds the shared data model used across the Generate
// pipeline: the Track record read from the metadata store, and the usage
// record written back after a playlist is built.
package track

import "time"

// Track is a single library entry as read from the metadata store. Any
// field set to its zero value is treated as absent per spec.md's
// "unknown/absent is always compatible" rule rather than as an error.
type Track struct {
	ID              string
	Path            string
	Artist          string
	Album           string
	Title           string
	Genre           string
	BPM             float64 // 0 = unknown
	Key             string  // Camelot string, "" or "unknown" = unknown
	Energy          *float64
	CueInEnergy     *float64
	CueOutEnergy    *float64
	LoudnessDB      *float64
	CueIn           float64
	CueOut          float64
	DurationSeconds float64
	AnalyzedAt      time.Time
}

// UsageRecord is a single playlist placement of a track, used to compute
// recent-usage repeat decay.
type UsageRecord struct {
	TrackID    string
	PlaylistID string
	Position   int
	UsedAt     time.Time
}
