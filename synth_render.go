// synth_render.go - Offline (non-real-time) rendering front end

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// The offline path shares every construction and scheduling function
// with the real-time engine; the only difference is that the release
// phase is committed up front on the absolute timeline (the ramp ends
// exactly at the requested duration) and the render loop runs as fast as
// the CPU allows.

// effectsTailSeconds estimates how long the chain keeps ringing after
// the voice goes silent, so offline renders capture delay repeats and
// the reverb tail.
func effectsTailSeconds(cfg *EffectsConfig) float64 {
	if cfg == nil {
		return 0
	}
	var tail float64
	if cfg.Delay != nil {
		t := clampRange(cfg.Delay.Time, 0, MaxDelayTime, 0.25)
		fb := clampRange(cfg.Delay.Feedback, 0, MaxDelayFeedback, 0.3)
		// Enough repeats to fall below audibility.
		repeats := 3.0
		if fb > 0.5 {
			repeats = 6
		}
		tail += t * repeats
	}
	if cfg.Reverb != nil {
		tail += clampRange(cfg.Reverb.Decay, MinReverbDecay, MaxReverbDecay, 1.5)
		tail += float64(ConvolverBlock) / SampleRate
	}
	if cfg.Chorus != nil {
		tail += ChorusBaseDelay * ChorusDelaySpread
	}
	return tail
}

// RenderPatch renders one note of the configuration at the given
// frequency for duration seconds, plus the effects tail. Returns
// interleaved stereo float32 at the engine sample rate.
func RenderPatch(cfg SoundConfig, freq, duration float64) []float32 {
	if duration <= 0 {
		duration = 1
	}
	g := newGraph(SampleRate)
	vg := buildVoiceGraph(g, cfg, freq, 0, duration, 1)
	chain := buildEffectsChain(g, cfg.Effects)
	connect(vg.output, chain.input)
	vg.start(0)

	total := int((duration + effectsTailSeconds(cfg.Effects)) * SampleRate)
	out := make([]float32, total*2)
	for i := 0; i < total; i++ {
		l, r := chain.output.sample(g.frame)
		out[2*i] = float32(l)
		out[2*i+1] = float32(r)
		g.frame++
	}
	vg.stopAll(g.Now())
	return out
}

// RenderNote is RenderPatch keyed by MIDI note number.
func RenderNote(cfg SoundConfig, note int, duration float64) []float32 {
	return RenderPatch(cfg, noteToHz(note), duration)
}

// NormalizeBuffer scales the buffer so its peak sits at target (0..1).
// A silent buffer is returned unchanged.
func NormalizeBuffer(buf []float32, target float64) {
	target = clamp01(target)
	var peak float64
	for _, s := range buf {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak == 0 || target == 0 {
		return
	}
	scale := float32(target / peak)
	for i := range buf {
		buf[i] *= scale
	}
}
