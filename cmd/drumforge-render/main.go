// drumforge-render - offline patch renderer: patch file in, WAV out

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/drumforge/drumforge"
)

func main() {
	var (
		patchPath = flag.String("patch", "", "patch file (.json or .lua); default patch if omitted")
		outPath   = flag.String("o", "out.wav", "output WAV file")
		note      = flag.Int("note", 60, "MIDI note number")
		duration  = flag.Float64("dur", 1.0, "note duration in seconds")
		normalize = flag.Float64("normalize", 0, "peak-normalize to this level (0 disables)")
	)
	flag.Parse()

	cfg := drumforge.DefaultConfig()
	if *patchPath != "" {
		loaded, err := drumforge.LoadPatchFile(*patchPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "drumforge-render: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	samples := drumforge.RenderNote(cfg, *note, *duration)
	if *normalize > 0 {
		drumforge.NormalizeBuffer(samples, *normalize)
	}

	if err := drumforge.WriteWAV(*outPath, samples); err != nil {
		fmt.Fprintf(os.Stderr, "drumforge-render: %v\n", err)
		os.Exit(1)
	}
	frames := len(samples) / 2
	fmt.Printf("wrote %s: %d frames (%.2fs)\n", *outPath, frames, float64(frames)/drumforge.SampleRate)
}
