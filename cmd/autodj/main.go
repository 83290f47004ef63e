// Command autodj is the thin CLI wrapper around the Generate core:
// spec.md §6's "generate --config ... --target-minutes ..." surface,
// plus the supplemented "store stats" and "watch" subcommands.
//
// Grounded on the teacher's cli.go for signal-driven cancellation
// (context.WithCancel + signal.Notify on SIGINT/SIGTERM) and on
// other_examples/manifests/Fauli-music-janitor's go.mod, the pack's only
// repo with a real cobra+afero CLI-framework dependency, which is why
// this wrapper reaches for cobra instead of the teacher's bare flag.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maxime-c16/autodj-headless/internal/apperr"
	"github.com/maxime-c16/autodj-headless/internal/appconfig"
	"github.com/maxime-c16/autodj-headless/internal/clockutil"
	"github.com/maxime-c16/autodj-headless/internal/generate"
	"github.com/maxime-c16/autodj-headless/internal/monitor"
	"github.com/maxime-c16/autodj-headless/internal/selector"
	"github.com/maxime-c16/autodj-headless/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if errExitCode != 0 {
			return errExitCode
		}
		return 2
	}
	return 0
}

// errExitCode lets subcommand RunE handlers report a more specific exit
// code than the usage-error fallback of 2 that run() applies, per spec.md §6's
// 0/1/2/130 contract. Cobra has no first-class "exit code" concept, so
// this mirrors the pattern of a single package-level result the teacher's
// main.go/run() uses to funnel flag-parse failures into process exit.
var errExitCode int

func newRootCommand() *cobra.Command {
	var (
		configPath string
		storePath  string
	)

	root := &cobra.Command{
		Use:           "autodj",
		Short:         "Offline, headless algorithmic DJ mix generator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to autodj.toml (default: AUTODJ_CONFIG_PATH, ./autodj.toml, or ~/.config/autodj/autodj.toml)")
	root.PersistentFlags().StringVar(&storePath, "store", "autodj.db", "path to the metadata store")

	root.AddCommand(newGenerateCommand(&configPath, &storePath))
	root.AddCommand(newStoreCommand(&storePath))
	root.AddCommand(newWatchCommand())
	return root
}

func newGenerateCommand(configPath, storePath *string) *cobra.Command {
	var (
		targetMinutes int
		seed          string
		mode          string
		outputDir     string
		randomSeed    int64
		useRandomSeed bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build one continuous mix from the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(appconfig.Locate(*configPath))
			if err != nil {
				errExitCode = 1
				return err
			}
			if targetMinutes > 0 {
				cfg.Mix.TargetDurationMinutes = targetMinutes
				if err := cfg.Validate(); err != nil {
					errExitCode = 1
					return err
				}
			}

			selMode := selector.Balanced
			if mode == string(selector.EnergyCurve) {
				selMode = selector.EnergyCurve
			} else if mode != "" && mode != string(selector.Balanced) {
				errExitCode = 2
				return fmt.Errorf("invalid --mode %q: want balanced or energy_curve", mode)
			}

			st, err := store.Open(*storePath, clockutil.Real())
			if err != nil {
				errExitCode = 1
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-stop
				errExitCode = 130
				cancel()
			}()

			opts := generate.Options{
				Config:    cfg,
				Mode:      selMode,
				SeedRef:   seed,
				OutputDir: outputDir,
				Logger:    slog.Default(),
				Clock:     clockutil.Real(),
			}
			if useRandomSeed {
				opts.SeedRef = "random"
				opts.RandomSeed = &randomSeed
			}

			result, err := generate.Run(ctx, st, opts)
			if err != nil {
				if ctx.Err() != nil {
					return err // errExitCode already set to 130 by the signal handler
				}
				errExitCode = apperr.ExitCode(err)
				if errExitCode == 0 {
					errExitCode = 1
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "generated %s: %d tracks, %ds, quality=%.3f\n",
				result.PlaylistID, len(result.Tracks), result.Plan.MixDurationSeconds, result.Quality.Value)
			fmt.Fprintf(cmd.OutOrStdout(), "  playlist: %s\n  mix plan: %s\n", result.Artifacts.PlaylistPath, result.Artifacts.TransitionsPath)
			if result.Warning != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", result.Warning)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&targetMinutes, "target-minutes", 0, "target mix duration in minutes (overrides config)")
	cmd.Flags().StringVar(&seed, "seed", "", "seed track id or file path (default: first library entry)")
	cmd.Flags().StringVar(&mode, "mode", string(selector.Balanced), "selection strategy: balanced or energy_curve")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory to write the playlist manifest and mix plan into")
	cmd.Flags().Int64Var(&randomSeed, "random-seed", 0, "reproducible PRNG seed for random seed-track selection")
	cmd.Flags().BoolVar(&useRandomSeed, "random", false, "pick the seed track at random using --random-seed")
	return cmd
}

func newStoreCommand(storePath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "store", Short: "Inspect the metadata store"}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print track and usage-record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(*storePath, clockutil.Real())
			if err != nil {
				errExitCode = 1
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				errExitCode = 1
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tracks: %d\nusage records: %d\n", stats.TrackCount, stats.UsageRecordCount)
			return nil
		},
	})
	return cmd
}

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <playlist.m3u>",
		Short: "Live-view a playlist manifest as it is (re)generated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := monitor.Watch(args[0]); err != nil {
				errExitCode = 1
				return err
			}
			return nil
		},
	}
}
