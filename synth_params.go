// synth_params.go - Parameter safety layer: clamping and non-finite guards

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// The synthesis path never raises errors for bad numbers. A NaN or Inf
// written into scheduled automation corrupts the graph with no way to
// recover mid-render, so every numeric config field passes through here
// before it touches a node or a Param.

// finiteOr returns v if it is a finite number, otherwise fallback.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// clampRange sanitizes v into [lo, hi], substituting fallback for
// non-finite input before clamping.
func clampRange(v, lo, hi, fallback float64) float64 {
	v = finiteOr(v, fallback)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 sanitizes a unit-range control.
func clamp01(v float64) float64 {
	return clampRange(v, 0, 1, 0)
}

// clampUnit sanitizes a bipolar unit-range control.
func clampUnit(v float64) float64 {
	return clampRange(v, -1, 1, 0)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampOscillatorHz keeps a frequency inside the playable oscillator range.
func clampOscillatorHz(hz float64) float64 {
	return clampRange(hz, MinOscillatorHz, MaxOscillatorHz, 440)
}

// clampFilterHz keeps a filter frequency inside the biquad's stable range.
func clampFilterHz(hz float64) float64 {
	return clampRange(hz, MinFilterHz, MaxFilterHz, 1000)
}

// sanitizeADSR floors the timed stages and bounds sustain to [0,1].
func sanitizeADSR(env EnvelopeConfig) EnvelopeConfig {
	return EnvelopeConfig{
		Attack:  clampRange(env.Attack, MinStageTime, MaxAttackTime, MinStageTime),
		Decay:   clampRange(env.Decay, MinStageTime, MaxDecayTime, MinStageTime),
		Sustain: clamp01(env.Sustain),
		Release: clampRange(env.Release, MinStageTime, MaxReleaseTime, MinStageTime),
	}
}
