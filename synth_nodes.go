// synth_nodes.go - Signal graph node implementations

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"math"
)

// schedulable is an audio generator with sample-accurate start/stop.
type schedulable interface {
	Start(t float64)
	Stop(t float64)
}

// --- Oscillator ---

type oscNode struct {
	baseNode
	shape     WaveShape
	Frequency *Param // Hz
	Detune    *Param // cents
	phase     float64
	startTime float64
	stopTime  float64
	started   bool
}

func newOscillator(g *Graph, shape WaveShape, freq float64) *oscNode {
	return &oscNode{
		baseNode:  newBaseNode(g),
		shape:     shape,
		Frequency: newParam(clampOscillatorHz(freq)),
		Detune:    newParam(0),
		stopTime:  math.Inf(1),
	}
}

func (o *oscNode) Start(t float64) {
	o.started = true
	o.startTime = finiteOr(t, 0)
}

func (o *oscNode) Stop(t float64) {
	o.stopTime = finiteOr(t, 0)
}

func (o *oscNode) sample(frame int64) (float64, float64) {
	if o.last == frame {
		return o.outL, o.outR
	}
	t := o.g.timeAt(frame)
	var v float64
	if o.started && t >= o.startTime && t < o.stopTime {
		freq := o.Frequency.sampleAt(o.g, frame)
		cents := o.Detune.sampleAt(o.g, frame)
		freq = finiteOr(freq, 440) * math.Exp2(clampRange(cents, -12000, 12000, 0)/1200)
		v = waveValue(o.shape, o.phase)
		o.phase += freq / o.g.sampleRate
		o.phase -= math.Floor(o.phase)
	}
	o.last = frame
	o.outL, o.outR = v, v
	return v, v
}

func waveValue(shape WaveShape, phase float64) float64 {
	switch shape {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default: // sine
		return math.Sin(2 * math.Pi * phase)
	}
}

// --- Looping buffer source ---

// bufferNode plays a precomputed mono buffer (noise beds, Karplus-Strong
// plucks, stepped LFO signals). The buffer fill is the one place audio
// data is produced synchronously on the control path; it completes
// before Start by construction.
type bufferNode struct {
	baseNode
	data      []float64
	loop      bool
	pos       int
	startTime float64
	stopTime  float64
	started   bool
}

func newBufferSource(g *Graph, data []float64, loop bool) *bufferNode {
	return &bufferNode{
		baseNode: newBaseNode(g),
		data:     data,
		loop:     loop,
		stopTime: math.Inf(1),
	}
}

func (b *bufferNode) Start(t float64) {
	b.started = true
	b.startTime = finiteOr(t, 0)
}

func (b *bufferNode) Stop(t float64) {
	b.stopTime = finiteOr(t, 0)
}

func (b *bufferNode) sample(frame int64) (float64, float64) {
	if b.last == frame {
		return b.outL, b.outR
	}
	t := b.g.timeAt(frame)
	var v float64
	if b.started && t >= b.startTime && t < b.stopTime && len(b.data) > 0 {
		if b.pos < len(b.data) {
			v = b.data[b.pos]
			b.pos++
			if b.pos >= len(b.data) && b.loop {
				b.pos = 0
			}
		}
	}
	b.last = frame
	b.outL, b.outR = v, v
	return v, v
}

// --- Constant source ---

// constNode emits a fixed value on both channels. Used as the carrier
// for envelope contours that must feed a Param as modulation (pitch
// envelopes summing into oscillator detune).
type constNode struct {
	baseNode
	value float64
}

func newConst(g *Graph, value float64) *constNode {
	return &constNode{baseNode: newBaseNode(g), value: finiteOr(value, 0)}
}

func (c *constNode) sample(frame int64) (float64, float64) {
	c.last = frame
	c.outL, c.outR = c.value, c.value
	return c.value, c.value
}

// --- Gain ---

type gainNode struct {
	baseNode
	inputList
	Gain *Param
}

func newGain(g *Graph, gain float64) *gainNode {
	return &gainNode{baseNode: newBaseNode(g), Gain: newParam(gain)}
}

func (n *gainNode) sample(frame int64) (float64, float64) {
	if n.last == frame {
		return n.outL, n.outR
	}
	l, r := n.sum(frame)
	gain := n.Gain.sampleAt(n.g, frame)
	l *= gain
	r *= gain
	n.last = frame
	n.outL, n.outR = l, r
	return l, r
}

// --- One-sample feedback tap ---

// feedbackTap reads its source's previous-frame output without pulling
// it, breaking cycles (FM self-feedback). The source must itself consume
// the tap so the loop is evaluated tap-first every frame.
type feedbackTap struct {
	baseNode
	src node
}

func newFeedbackTap(g *Graph, src node) *feedbackTap {
	return &feedbackTap{baseNode: newBaseNode(g), src: src}
}

func (f *feedbackTap) sample(frame int64) (float64, float64) {
	if f.last == frame {
		return f.outL, f.outR
	}
	l, r := f.src.lastOut()
	f.last = frame
	f.outL, f.outR = l, r
	return l, r
}

// --- Biquad filter ---

type biquadNode struct {
	baseNode
	inputList
	ftype     FilterType
	Frequency *Param
	Q         *Param
	gainDB    float64

	// cached design inputs
	lastFreq float64
	lastQ    float64

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     [2]float64
}

func newBiquad(g *Graph, ftype FilterType, freq, q, gainDB float64) *biquadNode {
	n := &biquadNode{
		baseNode:  newBaseNode(g),
		ftype:     ftype,
		Frequency: newParam(clampFilterHz(freq)),
		Q:         newParam(clampRange(q, MinFilterQ, MaxFilterQ, 0.707)),
		gainDB:    clampRange(gainDB, -MaxEQGainDB, MaxEQGainDB, 0),
		lastFreq:  -1,
		lastQ:     -1,
	}
	return n
}

func (n *biquadNode) sample(frame int64) (float64, float64) {
	if n.last == frame {
		return n.outL, n.outR
	}
	freq := clampFilterHz(n.Frequency.sampleAt(n.g, frame))
	q := clampRange(n.Q.sampleAt(n.g, frame), MinFilterQ, MaxFilterQ, 0.707)
	if freq != n.lastFreq || q != n.lastQ {
		n.design(freq, q)
		n.lastFreq, n.lastQ = freq, q
	}

	inL, inR := n.sum(frame)
	l := n.tick(0, inL)
	r := n.tick(1, inR)
	n.last = frame
	n.outL, n.outR = l, r
	return l, r
}

func (n *biquadNode) tick(ch int, x0 float64) float64 {
	y0 := n.b0*x0 + n.b1*n.x1[ch] + n.b2*n.x2[ch] - n.a1*n.y1[ch] - n.a2*n.y2[ch]
	n.x2[ch] = n.x1[ch]
	n.x1[ch] = x0
	n.y2[ch] = n.y1[ch]
	n.y1[ch] = y0
	return y0
}

// design computes RBJ cookbook coefficients, normalized by a0.
func (n *biquadNode) design(freq, q float64) {
	omega := 2 * math.Pi * freq / n.g.sampleRate
	sn, cs := math.Sin(omega), math.Cos(omega)
	alpha := sn / (2 * q)
	a := math.Pow(10, n.gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64
	switch n.ftype {
	case FilterHighpass:
		b0 = (1 + cs) / 2
		b1 = -(1 + cs)
		b2 = (1 + cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case FilterBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case FilterNotch:
		b0 = 1
		b1 = -2 * cs
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case FilterLowShelf:
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cs + beta)
		b1 = 2 * a * ((a - 1) - (a+1)*cs)
		b2 = a * ((a + 1) - (a-1)*cs - beta)
		a0 = (a + 1) + (a-1)*cs + beta
		a1 = -2 * ((a - 1) + (a+1)*cs)
		a2 = (a + 1) + (a-1)*cs - beta
	case FilterHighShelf:
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cs + beta)
		b1 = -2 * a * ((a - 1) + (a+1)*cs)
		b2 = a * ((a + 1) + (a-1)*cs - beta)
		a0 = (a + 1) - (a-1)*cs + beta
		a1 = 2 * ((a - 1) - (a+1)*cs)
		a2 = (a + 1) - (a-1)*cs - beta
	case FilterPeaking:
		b0 = 1 + alpha*a
		b1 = -2 * cs
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cs
		a2 = 1 - alpha/a
	default: // lowpass
		b0 = (1 - cs) / 2
		b1 = 1 - cs
		b2 = (1 - cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	}

	inv := 1 / a0
	n.b0, n.b1, n.b2 = b0*inv, b1*inv, b2*inv
	n.a1, n.a2 = a1*inv, a2*inv
}

// --- Waveshaper ---

// waveshaperNode applies a precomputed transfer-function lookup table.
// The table costs O(SaturationTableSize) once per voice; per-sample cost
// is one interpolated lookup, never a trig call.
type waveshaperNode struct {
	baseNode
	inputList
	curve []float64
	mix   float64
}

func newWaveshaper(g *Graph, curve []float64, mix float64) *waveshaperNode {
	return &waveshaperNode{baseNode: newBaseNode(g), curve: curve, mix: clamp01(mix)}
}

func (w *waveshaperNode) shape(x float64) float64 {
	n := len(w.curve)
	if n == 0 {
		return x
	}
	pos := (clampUnit(x) + 1) / 2 * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return w.curve[n-1]
	}
	frac := pos - float64(i)
	wet := w.curve[i]*(1-frac) + w.curve[i+1]*frac
	return x*(1-w.mix) + wet*w.mix
}

func (w *waveshaperNode) sample(frame int64) (float64, float64) {
	if w.last == frame {
		return w.outL, w.outR
	}
	l, r := w.sum(frame)
	l, r = w.shape(l), w.shape(r)
	w.last = frame
	w.outL, w.outR = l, r
	return l, r
}

// --- Stereo panner ---

type pannerNode struct {
	baseNode
	inputList
	Pan *Param // -1 .. +1
}

func newPanner(g *Graph, pan float64) *pannerNode {
	return &pannerNode{baseNode: newBaseNode(g), Pan: newParam(clampUnit(pan))}
}

func (p *pannerNode) sample(frame int64) (float64, float64) {
	if p.last == frame {
		return p.outL, p.outR
	}
	inL, inR := p.sum(frame)
	mono := (inL + inR) * 0.5
	pan := clampUnit(p.Pan.sampleAt(p.g, frame))
	angle := (pan + 1) * math.Pi / 4
	l := mono * math.Cos(angle)
	r := mono * math.Sin(angle)
	p.last = frame
	p.outL, p.outR = l, r
	return l, r
}

// --- Feedback echo (delay effect) ---

type echoNode struct {
	baseNode
	inputList
	bufL, bufR []float64
	pos        int
	feedback   float64
	mix        float64
}

func newEcho(g *Graph, delayTime, feedback, mix float64) *echoNode {
	delayTime = clampRange(delayTime, 1/g.sampleRate, MaxDelayTime, 0.25)
	n := int(delayTime * g.sampleRate)
	if n < 1 {
		n = 1
	}
	return &echoNode{
		baseNode: newBaseNode(g),
		bufL:     make([]float64, n),
		bufR:     make([]float64, n),
		feedback: clampRange(feedback, 0, MaxDelayFeedback, 0.3),
		mix:      clamp01(mix),
	}
}

func (e *echoNode) sample(frame int64) (float64, float64) {
	if e.last == frame {
		return e.outL, e.outR
	}
	inL, inR := e.sum(frame)
	wetL := e.bufL[e.pos]
	wetR := e.bufR[e.pos]
	e.bufL[e.pos] = inL + wetL*e.feedback
	e.bufR[e.pos] = inR + wetR*e.feedback
	e.pos++
	if e.pos >= len(e.bufL) {
		e.pos = 0
	}
	l := inL*(1-e.mix) + wetL*e.mix
	r := inR*(1-e.mix) + wetR*e.mix
	e.last = frame
	e.outL, e.outR = l, r
	return l, r
}

// --- Chorus / flanger ---

// chorusNode runs two LFO-modulated delay lines with base delays ~10%
// apart, one feeding each output channel. Feedback, when configured,
// only runs through the left line (flanger-style resonance).
type chorusNode struct {
	baseNode
	inputList
	bufL, bufR []float64
	pos        int
	rate       float64
	depth      float64 // seconds of modulation
	mix        float64
	feedback   float64
	phaseL     float64
	phaseR     float64
	fbSample   float64
}

func newChorus(g *Graph, rate, depth, mix, feedback float64) *chorusNode {
	maxDelay := ChorusBaseDelay*ChorusDelaySpread + MaxChorusDepth
	n := int(maxDelay*g.sampleRate) + 2
	return &chorusNode{
		baseNode: newBaseNode(g),
		bufL:     make([]float64, n),
		bufR:     make([]float64, n),
		rate:     clampRange(rate, 0.01, 10, 0.5),
		depth:    clamp01(depth) * MaxChorusDepth,
		mix:      clamp01(mix),
		feedback: clampRange(feedback, 0, 0.9, 0),
		phaseR:   0.25, // quadrature offset keeps the two lines decorrelated
	}
}

func (c *chorusNode) readDelayed(buf []float64, delaySamples float64) float64 {
	n := len(buf)
	readPos := float64(c.pos) - delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}
	i := int(readPos)
	frac := readPos - float64(i)
	s1 := buf[i%n]
	s2 := buf[(i+1)%n]
	return s1*(1-frac) + s2*frac
}

func (c *chorusNode) sample(frame int64) (float64, float64) {
	if c.last == frame {
		return c.outL, c.outR
	}
	inL, inR := c.sum(frame)
	mono := (inL + inR) * 0.5

	sr := c.g.sampleRate
	modL := math.Sin(2 * math.Pi * c.phaseL)
	modR := math.Sin(2 * math.Pi * c.phaseR)
	c.phaseL += c.rate / sr
	c.phaseL -= math.Floor(c.phaseL)
	c.phaseR += c.rate / sr
	c.phaseR -= math.Floor(c.phaseR)

	delayL := (ChorusBaseDelay + c.depth*modL) * sr
	delayR := (ChorusBaseDelay*ChorusDelaySpread + c.depth*modR) * sr

	wetL := c.readDelayed(c.bufL, delayL)
	wetR := c.readDelayed(c.bufR, delayR)

	c.bufL[c.pos] = mono + c.fbSample*c.feedback
	c.bufR[c.pos] = mono
	c.fbSample = wetL
	c.pos++
	if c.pos >= len(c.bufL) {
		c.pos = 0
	}

	l := inL*(1-c.mix) + wetL*c.mix
	r := inR*(1-c.mix) + wetR*c.mix
	c.last = frame
	c.outL, c.outR = l, r
	return l, r
}

// --- Compressor ---

type compressorNode struct {
	baseNode
	inputList
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackCoef  float64
	releaseCoef float64
	envelope    float64
}

func newCompressor(g *Graph, cfg CompressorConfig) *compressorNode {
	attack := clampRange(cfg.Attack, MinCompAttack, MaxCompAttack, 0.005)
	release := clampRange(cfg.Release, MinCompRelease, MaxCompRelease, 0.05)
	return &compressorNode{
		baseNode:    newBaseNode(g),
		thresholdDB: clampRange(cfg.ThresholdDB, MinCompThreshold, MaxCompThreshold, -20),
		ratio:       clampRange(cfg.Ratio, MinCompRatio, MaxCompRatio, 4),
		kneeDB:      clampRange(cfg.KneeDB, 0, MaxCompKnee, 2),
		attackCoef:  math.Exp(-1 / (attack * g.sampleRate)),
		releaseCoef: math.Exp(-1 / (release * g.sampleRate)),
	}
}

// gainReductionDB computes the static curve with a quadratic soft knee.
func (c *compressorNode) gainReductionDB(levelDB float64) float64 {
	over := levelDB - c.thresholdDB
	half := c.kneeDB / 2
	switch {
	case over <= -half:
		return 0
	case over < half && c.kneeDB > 0:
		t := over + half
		return (1/c.ratio - 1) * t * t / (2 * c.kneeDB)
	default:
		return (1/c.ratio - 1) * over
	}
}

func (c *compressorNode) sample(frame int64) (float64, float64) {
	if c.last == frame {
		return c.outL, c.outR
	}
	inL, inR := c.sum(frame)
	level := math.Max(math.Abs(inL), math.Abs(inR))
	if level > c.envelope {
		c.envelope = level + (c.envelope-level)*c.attackCoef
	} else {
		c.envelope = level + (c.envelope-level)*c.releaseCoef
	}
	levelDB := 20 * math.Log10(c.envelope+1e-12)
	gain := math.Pow(10, c.gainReductionDB(levelDB)/20)
	l := inL * gain
	r := inR * gain
	c.last = frame
	c.outL, c.outR = l, r
	return l, r
}
