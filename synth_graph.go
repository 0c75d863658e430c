// synth_graph.go - Pull-model signal graph and scheduled parameter automation

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"math"
	"sort"
)

// The graph is a small audio virtual machine. Construction happens on the
// control path; per-sample evaluation is a pull from the master node with
// per-frame memoization. Automation is pure data (timestamped events on
// Params), which is what makes the scheduling logic testable without
// rendering audio.

// Graph owns the render timeline for one engine or one offline render.
type Graph struct {
	sampleRate float64
	frame      int64
}

func newGraph(sampleRate float64) *Graph {
	return &Graph{sampleRate: sampleRate}
}

// Now returns the current render-timeline position in seconds.
func (g *Graph) Now() float64 {
	return float64(g.frame) / g.sampleRate
}

func (g *Graph) timeAt(frame int64) float64 {
	return float64(frame) / g.sampleRate
}

// node is one evaluable unit. sample() must memoize on frame so shared
// nodes are computed once per frame; lastOut() exposes the previous
// completed output for one-sample feedback taps.
type node interface {
	sample(frame int64) (left, right float64)
	lastOut() (left, right float64)
}

// sink is a node that accepts audio inputs (fan-in is summed).
type sink interface {
	addInput(n node)
	removeInput(n node)
}

// connect wires src's output into dst's summed input set.
func connect(src node, dst sink) {
	dst.addInput(src)
}

// disconnect removes src from dst's input set. Idempotent.
func disconnect(src node, dst sink) {
	dst.removeInput(src)
}

// baseNode carries the memoization state every node shares.
type baseNode struct {
	g          *Graph
	last       int64
	outL, outR float64
}

func newBaseNode(g *Graph) baseNode {
	return baseNode{g: g, last: -1}
}

func (b *baseNode) lastOut() (float64, float64) {
	return b.outL, b.outR
}

// inputList implements summed fan-in for sink nodes.
type inputList struct {
	in []node
}

func (l *inputList) addInput(n node) {
	l.in = append(l.in, n)
}

func (l *inputList) removeInput(n node) {
	for i, x := range l.in {
		if x == n {
			l.in = append(l.in[:i], l.in[i+1:]...)
			return
		}
	}
}

func (l *inputList) sum(frame int64) (float64, float64) {
	var sl, sr float64
	for _, n := range l.in {
		a, b := n.sample(frame)
		sl += a
		sr += b
	}
	return sl, sr
}

// --- Parameter automation ---

// AutomationType discriminates scheduled events on a Param.
type AutomationType int

const (
	// SetValue jumps to Value at Time.
	SetValue AutomationType = iota
	// LinearRamp ramps linearly from the previous event to Value at Time.
	LinearRamp
	// ExponentialRamp ramps exponentially from the previous event to
	// Value at Time. Both endpoints must be positive; the scheduler
	// guarantees this with EnvelopeFloor.
	ExponentialRamp
)

// AutomationEvent is one timestamped value change. Events are pure data;
// tests assert directly on the scheduled points.
type AutomationEvent struct {
	Type  AutomationType
	Time  float64
	Value float64
}

// Param is an automatable scalar: a base value, a sorted event list and
// an optional set of modulation inputs whose outputs are summed on top.
type Param struct {
	base   float64
	events []AutomationEvent
	mods   []node
}

func newParam(base float64) *Param {
	return &Param{base: base}
}

// SetValue replaces the base value used when no automation is in effect.
func (p *Param) SetValue(v float64) {
	p.base = finiteOr(v, p.base)
}

// Value returns the base value (ignoring automation and modulation).
func (p *Param) Value() float64 {
	return p.base
}

func (p *Param) schedule(ev AutomationEvent) {
	ev.Value = finiteOr(ev.Value, p.base)
	ev.Time = finiteOr(ev.Time, 0)
	p.events = append(p.events, ev)
	// Keep sorted by time; insertion order breaks ties.
	sort.SliceStable(p.events, func(i, j int) bool {
		return p.events[i].Time < p.events[j].Time
	})
}

// SetValueAtTime schedules an instantaneous jump.
func (p *Param) SetValueAtTime(value, t float64) {
	p.schedule(AutomationEvent{Type: SetValue, Time: t, Value: value})
}

// LinearRampToValueAtTime schedules a linear ramp ending at t.
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.schedule(AutomationEvent{Type: LinearRamp, Time: t, Value: value})
}

// ExponentialRampToValueAtTime schedules an exponential ramp ending at t.
func (p *Param) ExponentialRampToValueAtTime(value, t float64) {
	p.schedule(AutomationEvent{Type: ExponentialRamp, Time: t, Value: value})
}

// CancelScheduledValues drops every event at or after t. Required before
// writing a fast-release ramp over a previously committed contour.
func (p *Param) CancelScheduledValues(t float64) {
	kept := p.events[:0]
	for _, ev := range p.events {
		if ev.Time < t {
			kept = append(kept, ev)
		}
	}
	p.events = kept
}

// Events returns the scheduled automation points in time order.
func (p *Param) Events() []AutomationEvent {
	out := make([]AutomationEvent, len(p.events))
	copy(out, p.events)
	return out
}

// ValueAt evaluates the automation contour at time t, ignoring
// modulation inputs. Pure; usable from tests.
func (p *Param) ValueAt(t float64) float64 {
	if len(p.events) == 0 {
		return p.base
	}

	// Anchor before the first event is the base value at time 0.
	prevTime, prevValue := 0.0, p.base
	for _, ev := range p.events {
		if t < ev.Time {
			switch ev.Type {
			case SetValue:
				return prevValue
			case LinearRamp:
				return interpLinear(prevTime, prevValue, ev.Time, ev.Value, t)
			case ExponentialRamp:
				return interpExponential(prevTime, prevValue, ev.Time, ev.Value, t)
			}
		}
		prevTime, prevValue = ev.Time, ev.Value
	}
	return prevValue
}

func interpLinear(t0, v0, t1, v1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	frac := (t - t0) / (t1 - t0)
	return v0 + (v1-v0)*frac
}

func interpExponential(t0, v0, t1, v1, t float64) float64 {
	if t1 <= t0 {
		return v1
	}
	// Exponential interpolation needs same-signed nonzero endpoints;
	// degrade to linear otherwise (scheduler floors at EnvelopeFloor, so
	// this only triggers on raw caller input).
	if v0 <= 0 || v1 <= 0 {
		return interpLinear(t0, v0, t1, v1, t)
	}
	frac := (t - t0) / (t1 - t0)
	return v0 * math.Pow(v1/v0, frac)
}

// connectMod adds a node's output (left channel) on top of the automated
// value. This is how FM routing and LFO pitch/filter modulation attach.
func (p *Param) connectMod(n node) {
	p.mods = append(p.mods, n)
}

func (p *Param) disconnectMod(n node) {
	for i, x := range p.mods {
		if x == n {
			p.mods = append(p.mods[:i], p.mods[i+1:]...)
			return
		}
	}
}

// sampleAt evaluates automation plus modulation for one frame.
func (p *Param) sampleAt(g *Graph, frame int64) float64 {
	v := p.ValueAt(g.timeAt(frame))
	for _, m := range p.mods {
		l, _ := m.sample(frame)
		v += l
	}
	return v
}
