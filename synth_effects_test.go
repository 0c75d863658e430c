// synth_effects_test.go - Effects chain construction and stage tests

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

func fullEffectsConfig() *EffectsConfig {
	return &EffectsConfig{
		EQ:         &EQConfig{LowGainDB: 3, MidGainDB: -2, HighGainDB: 1},
		Distortion: &DistortionConfig{Type: DistortionSoft, Amount: 0.5, Mix: 1},
		Compressor: &CompressorConfig{ThresholdDB: -20, Ratio: 4, Attack: 0.005, Release: 0.05},
		Chorus:     &ChorusConfig{Rate: 0.5, Depth: 0.5, Mix: 0.5},
		Delay:      &DelayConfig{Time: 0.25, Feedback: 0.3, Mix: 0.3},
		Reverb:     &ReverbConfig{Decay: 0.5, Mix: 0.3},
	}
}

func TestEffectsChainStageOrder(t *testing.T) {
	g := newGraph(SampleRate)
	chain := buildEffectsChain(g, fullEffectsConfig())

	want := []string{"eq", "distortion", "compressor", "chorus", "delay", "reverb"}
	if len(chain.stageNames) != len(want) {
		t.Fatalf("got stages %v, want %v", chain.stageNames, want)
	}
	for i, name := range want {
		if chain.stageNames[i] != name {
			t.Fatalf("stage %d = %q, want %q (order is fixed)", i, chain.stageNames[i], name)
		}
	}
}

func TestEffectsChainAbsentStagesContributeNothing(t *testing.T) {
	g := newGraph(SampleRate)

	empty := buildEffectsChain(g, nil)
	if len(empty.stageNames) != 0 {
		t.Errorf("nil config built stages: %v", empty.stageNames)
	}
	if empty.output != node(empty.input) {
		t.Error("empty chain must pass input straight through")
	}

	only := buildEffectsChain(g, &EffectsConfig{Reverb: &ReverbConfig{Decay: 0.5, Mix: 0.5}})
	if len(only.stageNames) != 1 || only.stageNames[0] != "reverb" {
		t.Errorf("single-stage chain: %v", only.stageNames)
	}
}

func TestEmptyChainPassesAudioUnchanged(t *testing.T) {
	g := newGraph(SampleRate)
	chain := buildEffectsChain(g, &EffectsConfig{})
	src := newConst(g, 0.5)
	connect(src, chain.input)

	l, r := chain.output.sample(0)
	if math.Abs(l-0.5) > 1e-12 || math.Abs(r-0.5) > 1e-12 {
		t.Errorf("pass-through = (%v, %v), want (0.5, 0.5)", l, r)
	}
}

func TestBitcrushBitsMapping(t *testing.T) {
	tests := []struct {
		amount float64
		want   int
	}{
		{0, 16},
		{0.5, 9},
		{1, 2},
		{-1, 16},  // clamped amount
		{2, 2},    // clamped amount
	}
	for _, tt := range tests {
		if got := bitcrushBits(tt.amount); got != tt.want {
			t.Errorf("bitcrushBits(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestCrusherQuantizesLevels(t *testing.T) {
	g := newGraph(SampleRate)
	cr := newCrusher(g, 1, 1) // 2 bits, full wet
	src := newConst(g, 0.4)
	connect(src, cr)

	l, _ := cr.sample(0)
	// 3 quantization levels across [-1,1]: 0.4 rounds to 1/3.
	if math.Abs(l-1.0/3.0) > 1e-9 {
		t.Errorf("crushed 0.4 = %v, want 1/3", l)
	}
}

func TestDistortionCurvesBounded(t *testing.T) {
	kinds := []DistortionType{DistortionHard, DistortionFuzz, DistortionWaveshaper, DistortionSoft}
	for _, kind := range kinds {
		for _, amount := range []float64{0, 0.5, 1} {
			curve := distortionCurve(kind, amount)
			if len(curve) != SaturationTableSize {
				t.Fatalf("%s: curve length %d", kind, len(curve))
			}
			for i, v := range curve {
				if v < -1-1e-12 || v > 1+1e-12 {
					t.Fatalf("%s amount=%v: curve[%d] = %v out of range", kind, amount, i, v)
				}
			}
		}
	}
}

func TestSaturationCurvesBounded(t *testing.T) {
	for _, kind := range []SaturationType{SaturationSoft, SaturationHard, SaturationTube, SaturationTape} {
		curve := saturationCurve(kind, 1)
		for i, v := range curve {
			if v < -1.1 || v > 1.1 {
				t.Fatalf("%s: curve[%d] = %v out of range", kind, i, v)
			}
		}
	}
}

func TestTubeSaturationAsymmetric(t *testing.T) {
	// Even-harmonic character requires the halves to differ.
	pos := saturate(SaturationTube, 0.5, 5)
	neg := saturate(SaturationTube, -0.5, 5)
	if math.Abs(pos+neg) < 1e-6 {
		t.Error("tube curve is symmetric; expected asymmetry")
	}
}

func TestCompressorReducesLoudSignals(t *testing.T) {
	g := newGraph(SampleRate)
	comp := newCompressor(g, CompressorConfig{ThresholdDB: -20, Ratio: 10, Attack: 0.001, Release: 0.05})
	src := newConst(g, 0.9) // well above threshold
	connect(src, comp)

	var last float64
	for f := int64(0); f < 4410; f++ {
		last, _ = comp.sample(f)
	}
	if last >= 0.9 {
		t.Errorf("compressor did not reduce: out %v for in 0.9", last)
	}
	if last <= 0 {
		t.Errorf("compressor killed the signal: %v", last)
	}
}

func TestCompressorBelowThresholdUntouched(t *testing.T) {
	g := newGraph(SampleRate)
	comp := newCompressor(g, CompressorConfig{ThresholdDB: -6, Ratio: 4, Attack: 0.001, Release: 0.05})
	src := newConst(g, 0.1) // -20 dB, below threshold and knee
	connect(src, comp)

	var last float64
	for f := int64(0); f < 4410; f++ {
		last, _ = comp.sample(f)
	}
	if math.Abs(last-0.1) > 1e-6 {
		t.Errorf("below-threshold signal altered: %v", last)
	}
}

func TestReverbImpulseResponseDecays(t *testing.T) {
	irL, irR := reverbImpulseResponse(SampleRate, 1.0, 0.3)
	if len(irL) != len(irR) {
		t.Fatalf("channel lengths differ: %d vs %d", len(irL), len(irR))
	}
	if len(irL) != SampleRate {
		t.Fatalf("IR length = %d, want %d (1s)", len(irL), SampleRate)
	}

	energy := func(buf []float64) float64 {
		var e float64
		for _, s := range buf {
			e += s * s
		}
		return e
	}
	head := energy(irL[:len(irL)/4])
	tail := energy(irL[3*len(irL)/4:])
	if tail >= head {
		t.Errorf("IR does not decay: head %v, tail %v", head, tail)
	}

	// Channels must decorrelate for stereo width.
	var dot float64
	for i := range irL {
		dot += irL[i] * irR[i]
	}
	if math.Abs(dot) > 0.5 { // both channels are energy-normalized to 1
		t.Errorf("IR channels too correlated: %v", dot)
	}
}

func TestChorusQuadraturePhases(t *testing.T) {
	g := newGraph(SampleRate)
	ch := newChorus(g, 0.5, 0.5, 0.5, 0)
	if ch.phaseL != 0 || ch.phaseR != 0.25 {
		t.Errorf("chorus LFO phases = (%v, %v), want (0, 0.25)", ch.phaseL, ch.phaseR)
	}
}
