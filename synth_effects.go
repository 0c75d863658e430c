// synth_effects.go - The per-configuration effects chain

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// effectsChain is one built instance of an EffectsConfig, shared by every
// voice playing under the configuration that produced it. Stage order is
// fixed; absent stages contribute zero nodes. voiceCount tracks how many
// live voices still feed a retired chain so it can be torn down once they
// drain.
type effectsChain struct {
	input      *gainNode
	output     node
	stageNames []string
	voiceCount int
}

func buildEffectsChain(g *Graph, cfg *EffectsConfig) *effectsChain {
	c := &effectsChain{input: newGain(g, 1)}
	var cur node = c.input
	if cfg == nil {
		c.output = cur
		return c
	}

	if cfg.EQ != nil {
		low := newBiquad(g, FilterLowShelf, EQLowShelfHz, 0.707, cfg.EQ.LowGainDB)
		midHz := cfg.EQ.MidHz
		if midHz == 0 {
			midHz = EQDefaultMidHz
		}
		mid := newBiquad(g, FilterPeaking, midHz, 1.0, cfg.EQ.MidGainDB)
		high := newBiquad(g, FilterHighShelf, EQHighShelfHz, 0.707, cfg.EQ.HighGainDB)
		connect(cur, low)
		connect(low, mid)
		connect(mid, high)
		cur = high
		c.stageNames = append(c.stageNames, "eq")
	}

	if cfg.Distortion != nil {
		if cfg.Distortion.Type == DistortionBitcrush {
			cr := newCrusher(g, cfg.Distortion.Amount, cfg.Distortion.Mix)
			connect(cur, cr)
			cur = cr
		} else {
			curve := distortionCurve(cfg.Distortion.Type, cfg.Distortion.Amount)
			ws := newWaveshaper(g, curve, cfg.Distortion.Mix)
			connect(cur, ws)
			cur = ws
		}
		c.stageNames = append(c.stageNames, "distortion")
	}

	if cfg.Compressor != nil {
		comp := newCompressor(g, *cfg.Compressor)
		connect(cur, comp)
		cur = comp
		c.stageNames = append(c.stageNames, "compressor")
	}

	if cfg.Chorus != nil {
		ch := newChorus(g, cfg.Chorus.Rate, cfg.Chorus.Depth, cfg.Chorus.Mix, cfg.Chorus.Feedback)
		connect(cur, ch)
		cur = ch
		c.stageNames = append(c.stageNames, "chorus")
	}

	if cfg.Delay != nil {
		d := newEcho(g, cfg.Delay.Time, cfg.Delay.Feedback, cfg.Delay.Mix)
		connect(cur, d)
		cur = d
		c.stageNames = append(c.stageNames, "delay")
	}

	if cfg.Reverb != nil {
		irL, irR := reverbImpulseResponse(g.sampleRate, cfg.Reverb.Decay, cfg.Reverb.Damping)
		conv := newConvolver(g, irL, irR)
		mix := clamp01(cfg.Reverb.Mix)
		tail := newGain(g, 1)
		dry := newGain(g, 1-mix)
		wet := newGain(g, mix)
		sum := newGain(g, 1)
		connect(cur, tail)
		connect(tail, conv)
		connect(conv, wet)
		connect(tail, dry)
		connect(dry, sum)
		connect(wet, sum)
		cur = sum
		c.stageNames = append(c.stageNames, "reverb")
	}

	c.output = cur
	return c
}

// --- Bitcrusher ---

// crusherNode quantizes to a reduced bit depth. The depth mapping is
// bits = round(16 - amount*14), clamped to [2,16].
type crusherNode struct {
	baseNode
	inputList
	levels float64
	mix    float64
}

func bitcrushBits(amount float64) int {
	bits := int(math.Round(float64(BitcrushMaxBits) - clamp01(amount)*14))
	return clampInt(bits, BitcrushMinBits, BitcrushMaxBits)
}

func newCrusher(g *Graph, amount, mix float64) *crusherNode {
	return &crusherNode{
		baseNode: newBaseNode(g),
		levels:   math.Exp2(float64(bitcrushBits(amount))) - 1,
		mix:      clamp01(mix),
	}
}

func (c *crusherNode) crush(x float64) float64 {
	wet := math.Round(clampUnit(x)*c.levels) / c.levels
	return x*(1-c.mix) + wet*c.mix
}

func (c *crusherNode) sample(frame int64) (float64, float64) {
	if c.last == frame {
		return c.outL, c.outR
	}
	l, r := c.sum(frame)
	l, r = c.crush(l), c.crush(r)
	c.last = frame
	c.outL, c.outR = l, r
	return l, r
}

// --- Distortion transfer curves ---

// distortionCurve builds the lookup table for the non-bitcrush
// distortion types. Every curve is bounded to [-1,1].
func distortionCurve(kind DistortionType, amount float64) []float64 {
	amount = clamp01(amount)
	k := 1 + amount*24
	curve := make([]float64, SaturationTableSize)
	for i := range curve {
		x := float64(i)/float64(SaturationTableSize-1)*2 - 1
		var v float64
		switch kind {
		case DistortionHard:
			v = clampUnit(x * (1 + amount*9))
		case DistortionFuzz:
			// Asymmetric clipping with a hotter negative half.
			if x >= 0 {
				v = math.Tanh(k * x)
			} else {
				v = clampUnit(math.Tanh(k*0.4*x) * 1.2)
			}
		case DistortionWaveshaper:
			// Blend towards the third Chebyshev polynomial, which folds
			// the waveform instead of merely clipping it.
			v = (1-amount)*x + amount*(4*x*x*x-3*x)
		default: // soft
			v = math.Tanh(k * x)
		}
		curve[i] = clampUnit(v)
	}
	return curve
}

// --- Reverb impulse response ---

// reverbImpulseResponse synthesizes a stereo IR: exponentially decaying
// noise (reaching -60 dB at the decay time) through a one-pole lowpass
// whose coefficient tracks the damping control. The two channels use
// independent noise so the tail decorrelates into width. Each channel is
// energy-normalized so perceived reverb level tracks the mix control, not
// the decay time.
func reverbImpulseResponse(sampleRate, decay, damping float64) ([]float64, []float64) {
	decay = clampRange(decay, MinReverbDecay, MaxReverbDecay, 1.5)
	damping = clamp01(damping)
	n := int(decay * sampleRate)
	if n < 1 {
		n = 1
	}
	// -60 dB = exp(-6.907755...) at t = decay.
	const db60 = 6.907755278982137
	lpCoef := 1 - 0.9*damping

	build := func() []float64 {
		white := randomSamples(n)
		ir := make([]float64, n)
		var state float64
		var energy float64
		for i, w := range white {
			t := float64(i) / sampleRate
			state += lpCoef * (w - state)
			v := state * math.Exp(-db60*t/decay)
			ir[i] = v
			energy += v * v
		}
		if energy > 0 {
			inv := 1 / math.Sqrt(energy)
			for i := range ir {
				ir[i] *= inv
			}
		}
		return ir
	}
	return build(), build()
}
