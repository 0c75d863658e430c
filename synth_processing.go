// synth_processing.go - Per-layer and global shaping stages: filters and saturation

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// buildFilter constructs a biquad from a sanitized filter config.
func buildFilter(g *Graph, cfg *FilterConfig) *biquadNode {
	q := cfg.Q
	if q == 0 {
		q = 0.707
	}
	return newBiquad(g, cfg.Type, cfg.Frequency, q, cfg.GainDB)
}

// saturationCurve precomputes the 256-entry transfer function for a
// saturation stage. Curve generation is O(SaturationTableSize) once per
// voice; playback is a table lookup per sample. Every curve maps [-1,1]
// inputs to [-1,1] outputs.
func saturationCurve(kind SaturationType, drive float64) []float64 {
	drive = clamp01(drive)
	k := 1 + drive*19
	curve := make([]float64, SaturationTableSize)
	for i := range curve {
		x := float64(i)/float64(SaturationTableSize-1)*2 - 1
		curve[i] = saturate(kind, x, k)
	}
	return curve
}

func saturate(kind SaturationType, x, k float64) float64 {
	switch kind {
	case SaturationHard:
		return clampUnit(x * k)
	case SaturationTube:
		// Asymmetric tanh slopes: the negative half saturates earlier,
		// adding even harmonics.
		if x >= 0 {
			return math.Tanh(k * x)
		}
		return math.Tanh(k * 1.5 * x) * 0.9
	case SaturationTape:
		return clampUnit(1.05 * math.Tanh(0.9*k*x))
	default: // soft
		return math.Tanh(k * x)
	}
}

// buildSaturation constructs the per-voice waveshaper for a layer.
func buildSaturation(g *Graph, cfg *SaturationConfig) *waveshaperNode {
	return newWaveshaper(g, saturationCurve(cfg.Type, cfg.Drive), cfg.Mix)
}
