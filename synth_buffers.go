// synth_buffers.go - Precomputed audio buffers: noise colours and Karplus-Strong

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Noise beds are texture, not a waveform contract: the generator is
// seeded from the wall clock, so two renders differ sample-for-sample
// while keeping identical spectral shape.
var noiseRng = rand.New(rand.NewSource(time.Now().UnixNano()))
var noiseRngMu sync.Mutex

func randomSamples(n int) []float64 {
	out := make([]float64, n)
	noiseRngMu.Lock()
	for i := range out {
		out[i] = noiseRng.Float64()*2 - 1
	}
	noiseRngMu.Unlock()
	return out
}

func noiseBuffer(sampleRate float64, color NoiseColor) []float64 {
	n := int(NoiseBufferSeconds * sampleRate)
	switch color {
	case NoisePink:
		return pinkNoiseBuffer(n)
	case NoiseBrown:
		return brownNoiseBuffer(n)
	case NoiseNeural:
		return neuralTextureBuffer(n)
	default:
		return randomSamples(n)
	}
}

// pinkNoiseBuffer colours white noise with the 7-pole IIR filter bank
// (Paul Kellet's coefficients), approximating a -3 dB/octave falloff.
func pinkNoiseBuffer(n int) []float64 {
	white := randomSamples(n)
	out := make([]float64, n)
	var b0, b1, b2, b3, b4, b5, b6 float64
	for i, w := range white {
		b0 = 0.99886*b0 + w*0.0555179
		b1 = 0.99332*b1 + w*0.0750759
		b2 = 0.96900*b2 + w*0.1538520
		b3 = 0.86650*b3 + w*0.3104856
		b4 = 0.55000*b4 + w*0.5329522
		b5 = -0.7616*b5 - w*0.0168980
		out[i] = (b0 + b1 + b2 + b3 + b4 + b5 + b6 + w*0.5362) * 0.11
		b6 = w * 0.115926
	}
	return out
}

// brownNoiseBuffer integrates white noise through a leaky accumulator,
// gain-compensated to roughly match the other colours.
func brownNoiseBuffer(n int) []float64 {
	white := randomSamples(n)
	out := make([]float64, n)
	var lastOut float64
	for i, w := range white {
		lastOut = (lastOut + 0.02*w) / 1.02
		out[i] = lastOut * 3.5
	}
	return out
}

// karplusBuffer renders a plucked string: a noise-seeded ring buffer of
// length round(sampleRate / max(20, freq)) read out with the averaging
// lowpass feedback rule new = coef * 0.5 * (current + previous).
//
// The damping control is inverted on storage: input 0 maps to the
// longest-sustain coefficient (0.9999) and input 1 to the shortest
// (0.95). Decay times flip if the direction changes.
func karplusBuffer(sampleRate, freq, damping, inharmonicity float64) []float64 {
	freq = math.Max(KarplusMinHz, clampOscillatorHz(freq))
	n := int(math.Round(sampleRate / freq))
	if n < 2 {
		n = 2
	}
	coef := karplusFeedbackCoef(damping)

	ring := randomSamples(n)
	out := make([]float64, int(KarplusBufferSeconds*sampleRate))

	apCoef := clamp01(inharmonicity) * KarplusAllpassScale
	var apX, apY [KarplusAllpassStages]float64

	pos := 0
	prev := ring[n-1]
	for i := range out {
		cur := ring[pos]
		out[i] = cur
		v := coef * 0.5 * (cur + prev)
		prev = cur
		if apCoef > 0 {
			// First-order allpass cascade in the feedback path stretches
			// the upper partials. Skipped entirely at zero coefficient.
			for s := 0; s < KarplusAllpassStages; s++ {
				y := -apCoef*v + apX[s] + apCoef*apY[s]
				apX[s] = v
				apY[s] = y
				v = y
			}
		}
		ring[pos] = v
		pos++
		if pos >= n {
			pos = 0
		}
	}
	return out
}

// karplusFeedbackCoef maps the input-facing damping control onto the
// stored feedback coefficient. Monotonically decreasing by contract.
func karplusFeedbackCoef(damping float64) float64 {
	return KarplusFeedbackMax - clamp01(damping)*(KarplusFeedbackMax-KarplusFeedbackMin)
}

// --- Neural texture generator ---

// A toy two-layer network excites the texture buffer. The weights are
// process-wide immutable constants, computed once from a fixed seed so
// every process produces the same texture family.

const (
	textureSeed    = 0x5eed
	textureHidden  = 16
	textureHarmLen = 8
)

type textureWeights struct {
	w1 [textureHarmLen][textureHidden]float64
	b1 [textureHidden]float64
	w2 [textureHidden]float64
}

var (
	textureOnce sync.Once
	textureNet  *textureWeights
)

func textureNetwork() *textureWeights {
	textureOnce.Do(func() {
		rng := rand.New(rand.NewSource(textureSeed))
		net := &textureWeights{}
		for i := 0; i < textureHarmLen; i++ {
			for j := 0; j < textureHidden; j++ {
				net.w1[i][j] = rng.NormFloat64() * 0.7
			}
		}
		for j := 0; j < textureHidden; j++ {
			net.b1[j] = rng.NormFloat64() * 0.3
			net.w2[j] = rng.NormFloat64() * 0.5
		}
		textureNet = net
	})
	return textureNet
}

// neuralTextureBuffer evaluates the fixed network over a bank of slow
// sine inputs, producing an evolving but deterministic-spectrum bed.
func neuralTextureBuffer(n int) []float64 {
	net := textureNetwork()
	out := make([]float64, n)
	var peak float64
	for i := range out {
		t := float64(i) / float64(n)
		var inputs [textureHarmLen]float64
		for h := 0; h < textureHarmLen; h++ {
			inputs[h] = math.Sin(2 * math.Pi * t * float64(h+1) * 37)
		}
		var v float64
		for j := 0; j < textureHidden; j++ {
			var acc float64
			for h := 0; h < textureHarmLen; h++ {
				acc += inputs[h] * net.w1[h][j]
			}
			v += math.Tanh(acc+net.b1[j]) * net.w2[j]
		}
		out[i] = v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		inv := 1 / peak
		for i := range out {
			out[i] *= inv
		}
	}
	return out
}
