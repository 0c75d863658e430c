// audio_export_wav_test.go - WAV export tests

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWriteWAVRoundTrip(t *testing.T) {
	samples := RenderPatch(DefaultConfig(), 440, 0.1)
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, samples); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", dec.SampleRate, SampleRate)
	}
	if dec.NumChans != NumOutputChannels {
		t.Errorf("channels = %d, want %d", dec.NumChans, NumOutputChannels)
	}
	if len(buf.Data) != len(samples) {
		t.Errorf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}

	// Decoded audio must carry the rendered tone.
	var peak int
	for _, s := range buf.Data {
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}
	if peak < 1000 {
		t.Errorf("decoded peak = %d, expected audible signal", peak)
	}
}

func TestWriteWAVBadPath(t *testing.T) {
	if err := WriteWAV(filepath.Join(t.TempDir(), "no", "such", "dir.wav"), []float32{0}); err == nil {
		t.Error("unwritable path must error")
	}
}
