// Command autodj-ingest populates the metadata store's tracks table by
// reading ID3/Vorbis/FLAC tags off audio files, standing in for the
// external Analyze phase's non-MIR metadata (spec.md §1's Non-goals keep
// BPM/key detection itself out of scope; this only reads what a prior
// tagging pass already wrote into the files).
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxime-c16/autodj-headless/internal/clockutil"
	"github.com/maxime-c16/autodj-headless/internal/ingest"
	"github.com/maxime-c16/autodj-headless/internal/store"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".ogg": true, ".oga": true,
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: autodj-ingest <store.db> <music-dir> [music-dir...]")
		return 2
	}

	st, err := store.Open(os.Args[1], clockutil.Real())
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		return 1
	}
	defer st.Close()

	ctx := context.Background()
	ingested, failed := 0, 0
	for _, dir := range os.Args[2:] {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			t, err := ingest.Read(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
				failed++
				return nil
			}
			if _, err := st.AddTrack(ctx, t); err != nil {
				fmt.Fprintf(os.Stderr, "storing %s: %v\n", path, err)
				failed++
				return nil
			}
			ingested++
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "walking %s: %v\n", dir, err)
			return 1
		}
	}

	fmt.Printf("ingested %d tracks (%d failed)\n", ingested, failed)
	return 0
}
