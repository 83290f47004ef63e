// Package appconfig loads and validates autodj.toml against the bounds
// table from spec.md §6. Grounded on the teacher's config/config.go
// (BurntSushi/toml load/save shape) and original_source/src/autodj/config.py
// (the bounds table and the out-of-bounds-is-fatal behavior).
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
)

// Mix holds the top-level mix-duration targets.
type Mix struct {
	TargetDurationMinutes int    `toml:"target_duration_minutes"`
	MaxPlaylistTracks     int    `toml:"max_playlist_tracks"`
	SeedTrackPath         string `toml:"seed_track_path"`
}

// Constraints holds the Selector's filtering tolerances.
type Constraints struct {
	BPMTolerancePercent     float64 `toml:"bpm_tolerance_percent"`
	EnergyWindowSize        int     `toml:"energy_window_size"`
	MinTrackDurationSeconds float64 `toml:"min_track_duration_seconds"`
	MaxTrackDurationSeconds float64 `toml:"max_track_duration_seconds"`
	MaxRepeatDecayHours     float64 `toml:"max_repeat_decay_hours"`
}

// Render holds Planner crossfade parameters.
type Render struct {
	CrossfadeDurationSeconds float64 `toml:"crossfade_duration_seconds"`
}

// Config is the full validated configuration for a generate run.
type Config struct {
	ConfigVersion string      `toml:"config_version"`
	Mix           Mix         `toml:"mix"`
	Constraints   Constraints `toml:"constraints"`
	Render        Render      `toml:"render"`
}

type bound struct {
	min, max float64
}

// bounds mirrors original_source/config.py's PARAM_BOUNDS, restricted to
// the Generate-scoped sections spec.md §6 defines (analysis.* and
// key_detection.* belong to the out-of-scope Analyze phase and are not
// carried here).
var bounds = map[string]bound{
	"mix.target_duration_minutes":            {30, 120},
	"mix.max_playlist_tracks":                {10, 150},
	"constraints.bpm_tolerance_percent":      {2.0, 10.0},
	"constraints.energy_window_size":         {2, 5},
	"constraints.min_track_duration_seconds": {60, 300},
	"constraints.max_track_duration_seconds": {300, 3600},
	"constraints.max_repeat_decay_hours":     {24, 720},
	"render.crossfade_duration_seconds":      {2, 8},
}

// Default returns the documented default configuration (spec.md §6).
func Default() Config {
	return Config{
		ConfigVersion: "1.0",
		Mix: Mix{
			TargetDurationMinutes: 60,
			MaxPlaylistTracks:     90,
		},
		Constraints: Constraints{
			BPMTolerancePercent:     4.0,
			EnergyWindowSize:        3,
			MinTrackDurationSeconds: 120,
			MaxTrackDurationSeconds: 1200,
			MaxRepeatDecayHours:     168,
		},
		Render: Render{
			CrossfadeDurationSeconds: 4,
		},
	}
}

// Locate resolves the config path following explicit > env var > cwd >
// XDG-style home default, the merge of the teacher's GetConfigPath and
// original_source/config.py's AUTODJ_CONFIG_PATH fallback.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("AUTODJ_CONFIG_PATH"); env != "" {
		return env
	}
	if _, err := os.Stat("./autodj.toml"); err == nil {
		return "./autodj.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "autodj", "autodj.toml")
	}
	return "./autodj.toml"
}

// Load reads and validates the config at path. A missing file returns
// Default() with no error, matching both the teacher and the original
// Python loader. A present-but-invalid file is a fatal ConfigInvalid error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, apperr.Wrap(apperr.ConfigInvalid, "reading config file", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperr.Wrap(apperr.ConfigInvalid, "parsing config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every bounded parameter against the bounds table and
// returns a fatal ConfigInvalid error on the first violation found.
func (c Config) Validate() error {
	values := map[string]float64{
		"mix.target_duration_minutes":            float64(c.Mix.TargetDurationMinutes),
		"mix.max_playlist_tracks":                float64(c.Mix.MaxPlaylistTracks),
		"constraints.bpm_tolerance_percent":      c.Constraints.BPMTolerancePercent,
		"constraints.energy_window_size":         float64(c.Constraints.EnergyWindowSize),
		"constraints.min_track_duration_seconds": c.Constraints.MinTrackDurationSeconds,
		"constraints.max_track_duration_seconds": c.Constraints.MaxTrackDurationSeconds,
		"constraints.max_repeat_decay_hours":     c.Constraints.MaxRepeatDecayHours,
		"render.crossfade_duration_seconds":      c.Render.CrossfadeDurationSeconds,
	}

	for name, b := range bounds {
		v := values[name]
		if v < b.min || v > b.max {
			return apperr.New(apperr.ConfigInvalid,
				fmt.Sprintf("parameter %s=%v out of bounds [%v, %v]", name, v, b.min, b.max))
		}
	}
	return nil
}

// Save writes cfg to path as TOML, creating parent directories as needed.
// Grounded on the teacher's config/config.go SaveConfig.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
