// Package ingest reads ID3/Vorbis/FLAC tags off an audio file and maps
// them onto a track.Track row, the Go-native stand-in for the external
// Analyze phase's metadata extraction (spec.md §1 keeps MIR/BPM-detection
// itself out of scope; this only reads what's already tagged).
//
// Grounded on the teacher's playlist/track.go (dhowden/tag usage, the
// "8A - Energy 6" comment convention, the BPM raw-tag fallback chain),
// and on other_examples/llehouerou-waves' use of gopxl/beep's per-format
// decoders for sample-accurate duration.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/maxime-c16/autodj-headless/internal/track"
)

var (
	keyRegex    = regexp.MustCompile(`(\d{1,2}[AaBb])\s*-\s*Energy`)
	energyRegex = regexp.MustCompile(`Energy\s+(\d+)`)
)

// Read opens the audio file at path and extracts the tag fields
// track.Track can hold: artist/album/title/genre from the standard tag
// frames, BPM from whichever raw tag name the format uses, a Camelot key
// and 1-10 energy rating from the "<key> - Energy <n>" comment
// convention, and the on-disk duration decoded directly from the audio
// stream (tag libraries don't expose it; selector.go's duration floor and
// the Planner's mix-length total both need a real value, not a stub).
func Read(path string) (track.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return track.Track{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return track.Track{}, fmt.Errorf("reading tags from %s: %w", path, err)
	}

	title := meta.Title()
	if title == "" {
		title = path
	}

	duration, err := probeDuration(path)
	if err != nil {
		return track.Track{}, fmt.Errorf("probing duration for %s: %w", path, err)
	}

	t := track.Track{
		Path:            path,
		Artist:          meta.Artist(),
		Album:           meta.Album(),
		Title:           title,
		Genre:           meta.Genre(),
		BPM:             extractBPM(meta),
		Key:             extractKey(meta.Comment()),
		DurationSeconds: duration,
	}

	if energyRating := extractEnergyRating(meta.Comment()); energyRating > 0 {
		e := float64(energyRating) / 10
		t.Energy = &e
	}

	return t, nil
}

// probeDuration decodes just enough of the audio stream to read its total
// sample count and rate; the stream is never played back. mp3, flac, wav
// and ogg/vorbis cover the formats this module's library tooling targets —
// an unsupported container is reported as an error rather than silently
// stored as a zero-duration track.
func probeDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	default:
		return 0, fmt.Errorf("unsupported format for duration probing: %s", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}

// extractBPM scans the format-specific raw tag map for the first
// recognized BPM key, mirroring the teacher's multi-name fallback.
func extractBPM(meta tag.Metadata) float64 {
	raw := meta.Raw()
	if raw == nil {
		return 0
	}
	for _, key := range []string{"BPM", "TBPM", "bpm", "tempo"} {
		val, ok := raw[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if bpm, err := strconv.ParseFloat(v, 64); err == nil && bpm > 0 {
				return bpm
			}
		case int:
			if float64(v) > 0 {
				return float64(v)
			}
		case float64:
			if v > 0 {
				return v
			}
		}
	}
	return 0
}

func extractKey(comment string) string {
	m := keyRegex.FindStringSubmatch(comment)
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

// extractEnergyRating parses the 1-10 rating from the comment convention;
// internal/energy's Estimate works in [0,1] so callers scale by 10.
func extractEnergyRating(comment string) int {
	m := energyRegex.FindStringSubmatch(comment)
	if len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
