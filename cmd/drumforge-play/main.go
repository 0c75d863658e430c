// drumforge-play - interactive keyboard player for the real-time engine

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

	"golang.org/x/term"

	"github.com/drumforge/drumforge"
)

// keyNotes maps the middle two keyboard rows onto a C major octave plus
// accidentals, tracker style.
var keyNotes = map[byte]int{
	'z': 60, 's': 61, 'x': 62, 'd': 63, 'c': 64, 'v': 65,
	'g': 66, 'b': 67, 'h': 68, 'n': 69, 'j': 70, 'm': 71,
	'q': 72, '2': 73, 'w': 74, '3': 75, 'e': 76, 'r': 77,
	'5': 78, 't': 79, '6': 80, 'y': 81, '7': 82, 'u': 83,
}

func main() {
	var (
		patchPath = flag.String("patch", "", "patch file (.json or .lua); default patch if omitted")
		velocity  = flag.Float64("vel", 0.8, "note velocity (0..1)")
		voices    = flag.Int("voices", drumforge.DefaultPolyphony, "polyphony ceiling")
	)
	flag.Parse()

	cfg := drumforge.DefaultConfig()
	if *patchPath != "" {
		loaded, err := drumforge.LoadPatchFile(*patchPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "drumforge-play: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	engine := drumforge.NewEngine(cfg)
	engine.SetPolyphony(*voices)

	out, err := drumforge.NewOtoOutput(engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drumforge-play: audio device: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "drumforge-play: %v\n", err)
		os.Exit(1)
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "drumforge-play: raw terminal: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	fmt.Print("z..m / q..u play notes, space releases all, ESC quits\r\n")

	// Raw terminals report key presses only, so each press triggers a
	// retrigger-or-start and a short automatic release.
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			break
		}
		switch buf[0] {
		case 27: // ESC
			engine.AllNotesOff()
			return
		case ' ':
			engine.AllNotesOff()
		default:
			if note, ok := keyNotes[buf[0]]; ok {
				engine.NoteOn(note, *velocity)
				engine.NoteOff(note)
			}
		}
	}
}
