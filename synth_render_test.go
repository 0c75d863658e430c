// synth_render_test.go - Offline rendering front end tests

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"math"
	"testing"
)

func bufferPeak(buf []float32) float64 {
	var peak float64
	for _, s := range buf {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

func TestRenderPatchSimpleTone(t *testing.T) {
	buf := RenderPatch(DefaultConfig(), 440, 0.5)

	wantFrames := int(0.5 * SampleRate)
	if len(buf) != wantFrames*2 {
		t.Fatalf("buffer length = %d, want %d interleaved samples", len(buf), wantFrames*2)
	}
	peak := bufferPeak(buf)
	if peak < 0.01 {
		t.Errorf("render is silent: peak %v", peak)
	}
	if peak > 1.01 {
		t.Errorf("render clipped: peak %v", peak)
	}
	for i, s := range buf {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
	}
}

func TestRenderPatchEndsNearSilence(t *testing.T) {
	// The release ramp ends exactly at the requested duration, so the
	// final frames sit at the envelope floor.
	buf := RenderPatch(DefaultConfig(), 440, 0.5)
	tail := buf[len(buf)-200:]
	if peak := bufferPeak(tail); peak > 0.01 {
		t.Errorf("tail not silent: peak %v", peak)
	}
}

func TestRenderPatchWithFMFeedbackBounded(t *testing.T) {
	cfg := SoundConfig{
		Synthesis: SynthesisConfig{Layers: []LayerConfig{
			{Type: LayerFM, FM: &FMConfig{Ratio: 1, ModulationIndex: 0, Feedback: 0.9}},
		}},
		Envelope: testEnv,
	}
	buf := RenderPatch(cfg, 440, 0.5)
	peak := bufferPeak(buf)
	if peak < 0.01 {
		t.Errorf("feedback render silent: peak %v", peak)
	}
	if peak > 1.01 {
		t.Errorf("feedback render unstable: peak %v", peak)
	}
}

func TestRenderPatchIncludesEffectsTail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Effects = &EffectsConfig{Reverb: &ReverbConfig{Decay: 0.5, Mix: 0.5}}
	buf := RenderPatch(cfg, 440, 0.25)

	minFrames := int((0.25 + 0.5) * SampleRate)
	if len(buf) < minFrames*2 {
		t.Errorf("render too short for the reverb tail: %d samples", len(buf))
	}
	// The tail region must actually carry reverb energy.
	noteFrames := int(0.25 * SampleRate)
	tail := buf[noteFrames*2:]
	if peak := bufferPeak(tail); peak < 1e-5 {
		t.Errorf("no reverb tail energy: peak %v", peak)
	}
}

func TestRenderNoteMatchesRenderPatch(t *testing.T) {
	a := RenderNote(DefaultConfig(), 69, 0.25)
	b := RenderPatch(DefaultConfig(), 440, 0.25)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("buffers differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderMatchesEngineForSameContour(t *testing.T) {
	// Same patch, same note, same release position: the offline render
	// and the real-time engine must produce the same amplitude contour.
	cfg := DefaultConfig()
	duration := 0.6
	release := sanitizeADSR(cfg.Envelope).Release

	offline := RenderPatch(cfg, noteToHz(69), duration)

	e := NewEngine(cfg)
	e.NoteOn(69, 1)
	total := int(duration * SampleRate)
	realtime := make([]float32, total*2)
	releaseFrame := int((duration - release) * SampleRate)

	e.RenderBlock(realtime[:releaseFrame*2])
	e.NoteOff(69)
	e.RenderBlock(realtime[releaseFrame*2:])

	// Compare RMS over coarse windows rather than sample-exact: the
	// engine clamps its output and reaps at block boundaries.
	window := 2205 * 2
	for off := 0; off+window <= len(offline); off += window {
		var ea, eb float64
		for i := off; i < off+window; i++ {
			ea += float64(offline[i]) * float64(offline[i])
			eb += float64(realtime[i]) * float64(realtime[i])
		}
		ra := math.Sqrt(ea / float64(window))
		rb := math.Sqrt(eb / float64(window))
		if math.Abs(ra-rb) > 0.05 {
			t.Fatalf("window at %d: offline RMS %v, realtime RMS %v", off, ra, rb)
		}
	}
}

func TestNormalizeBuffer(t *testing.T) {
	buf := []float32{0.1, -0.5, 0.25}
	NormalizeBuffer(buf, 1)
	if math.Abs(bufferPeak(buf)-1) > 1e-6 {
		t.Errorf("normalized peak = %v, want 1", bufferPeak(buf))
	}

	silent := []float32{0, 0, 0}
	NormalizeBuffer(silent, 1)
	for _, s := range silent {
		if s != 0 {
			t.Error("silent buffer changed by normalization")
		}
	}
}
