// synth_lfo.go - Low-frequency modulation routing

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

// The router owns one LFO per voice and binds it to exactly one target.
// Pitch and filter targets sum into existing Params as modulation; the
// amplitude and pan targets insert a node after the voice's amplitude
// control and return the new effective output.

// newLFOSource builds the raw modulation signal. Periodic shapes reuse
// the audio oscillator; the random shape plays a looping sample-and-hold
// buffer stepped at freq * LFOStepsPerSecond.
func newLFOSource(g *Graph, shape WaveShape, freq float64) (node, schedulable) {
	if shape == WaveRandom {
		b := newBufferSource(g, steppedRandomBuffer(g.sampleRate, freq), true)
		return b, b
	}
	o := newOscillator(g, shape, MinOscillatorHz)
	// LFO rates sit far below the audio-oscillator floor; bypass the
	// audio-range clamp after construction.
	o.Frequency.SetValue(freq)
	return o, o
}

func steppedRandomBuffer(sampleRate, freq float64) []float64 {
	n := int(NoiseBufferSeconds * sampleRate)
	stepLen := int(sampleRate / (freq * LFOStepsPerSecond))
	if stepLen < 1 {
		stepLen = 1
	}
	out := make([]float64, n)
	var held float64
	for i := range out {
		if i%stepLen == 0 {
			held = randomSamples(1)[0]
		}
		out[i] = held
	}
	return out
}

// applyLFO wires the voice's modulation source to its target and returns
// the effective output node (changed only by amplitude and pan targets).
// The delay/fade gate holds the modulation at zero for delay seconds and
// then fades it in linearly over fade seconds; with both at zero the
// modulation is full-scale immediately.
func applyLFO(g *Graph, cfg *LFOConfig, v *voiceGraph, out node, start float64) node {
	depth := clamp01(cfg.Depth)
	if depth == 0 {
		return out
	}
	freq := clampRange(cfg.Frequency, 0.01, MaxLFOHz, 1)
	src, sched := newLFOSource(g, cfg.Waveform, freq)
	v.lfoSources = append(v.lfoSources, sched)

	gate := newGain(g, 1)
	connect(src, gate)
	delay := clampRange(cfg.Delay, 0, 30, 0)
	fade := clampRange(cfg.Fade, 0, 30, 0)
	if delay > 0 || fade > 0 {
		gate.Gain.SetValueAtTime(0, start)
		gate.Gain.SetValueAtTime(0, start+delay)
		gate.Gain.LinearRampToValueAtTime(1, start+delay+fade)
	}

	switch cfg.Target {
	case LFOTargetFilter:
		// Cutoff sweep proportional to the configured base frequency.
		if v.filter != nil {
			sc := newGain(g, depth*v.filterBase)
			connect(gate, sc)
			v.filter.Frequency.connectMod(sc)
		}
	case LFOTargetAmplitude:
		wrap := newGain(g, 1)
		connect(out, wrap)
		sc := newGain(g, depth)
		connect(gate, sc)
		wrap.Gain.connectMod(sc)
		out = wrap
	case LFOTargetPan:
		pn := newPanner(g, 0)
		connect(out, pn)
		sc := newGain(g, depth)
		connect(gate, sc)
		pn.Pan.connectMod(sc)
		out = pn
	default: // pitch
		// Vibrato in cents across every oscillator in the voice, sub
		// oscillators included, so the stack stays harmonically locked.
		sc := newGain(g, depth*LFOCentsPerDepth)
		connect(gate, sc)
		for _, d := range v.oscDetunes {
			d.connectMod(sc)
		}
	}
	return out
}
