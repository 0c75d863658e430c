// synth_graph_test.go - Signal graph and parameter automation tests

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

func TestParamValueAtLinearRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0, 1)
	p.LinearRampToValueAtTime(10, 2)

	tests := []struct {
		at   float64
		want float64
	}{
		{0.5, 0},
		{1.0, 0},
		{1.5, 5},
		{2.0, 10},
		{3.0, 10},
	}
	for _, tt := range tests {
		if got := p.ValueAt(tt.at); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestParamValueAtExponentialRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(1, 0)
	p.ExponentialRampToValueAtTime(100, 1)

	// Exponential midpoint is the geometric mean of the endpoints.
	if got := p.ValueAt(0.5); math.Abs(got-10) > 1e-9 {
		t.Errorf("midpoint = %v, want 10", got)
	}
	if got := p.ValueAt(1); math.Abs(got-100) > 1e-9 {
		t.Errorf("endpoint = %v, want 100", got)
	}
}

func TestParamExponentialRampDegradesForNonPositive(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0, 0)
	p.ExponentialRampToValueAtTime(10, 1)

	// Zero start cannot ramp exponentially; it must still move.
	if got := p.ValueAt(0.5); math.Abs(got-5) > 1e-12 {
		t.Errorf("degraded ramp midpoint = %v, want 5", got)
	}
}

func TestParamCancelScheduledValues(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(2, 0)
	p.LinearRampToValueAtTime(5, 1)
	p.LinearRampToValueAtTime(9, 3)

	p.CancelScheduledValues(1.5)
	events := p.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events after cancel, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Time >= 1.5 {
			t.Errorf("event at %v survived cancel", ev.Time)
		}
	}
	// The contour holds the last surviving value.
	if got := p.ValueAt(10); got != 5 {
		t.Errorf("ValueAt(10) = %v, want 5", got)
	}
}

func TestParamEventsSortedStable(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(3, 2)
	p.SetValueAtTime(1, 1)
	p.SetValueAtTime(2, 2) // same time as first, scheduled later

	events := p.Events()
	if events[0].Value != 1 || events[1].Value != 3 || events[2].Value != 2 {
		t.Errorf("events not sorted stably: %+v", events)
	}
	// Ties resolve to the last-scheduled value.
	if got := p.ValueAt(5); got != 2 {
		t.Errorf("ValueAt(5) = %v, want 2", got)
	}
}

func TestParamModulationSumsOnTop(t *testing.T) {
	g := newGraph(SampleRate)
	p := newParam(100)
	p.connectMod(newConst(g, 25))
	p.connectMod(newConst(g, -5))

	if got := p.sampleAt(g, 0); math.Abs(got-120) > 1e-12 {
		t.Errorf("sampleAt = %v, want 120", got)
	}

	// Automation and modulation combine.
	p.SetValueAtTime(50, 0)
	if got := p.sampleAt(g, 0); math.Abs(got-70) > 1e-12 {
		t.Errorf("sampleAt with automation = %v, want 70", got)
	}
}

func TestGainNodeSumsInputs(t *testing.T) {
	g := newGraph(SampleRate)
	gain := newGain(g, 0.5)
	connect(newConst(g, 1), gain)
	connect(newConst(g, 3), gain)

	l, r := gain.sample(0)
	if math.Abs(l-2) > 1e-12 || math.Abs(r-2) > 1e-12 {
		t.Errorf("gain output = (%v, %v), want (2, 2)", l, r)
	}
}

func TestNodeMemoizationPerFrame(t *testing.T) {
	g := newGraph(SampleRate)
	osc := newOscillator(g, WaveSine, 440)
	osc.Start(0)

	a1, _ := osc.sample(0)
	a2, _ := osc.sample(0) // same frame: must not advance phase
	if a1 != a2 {
		t.Fatalf("repeated sample differs: %v vs %v", a1, a2)
	}
	b, _ := osc.sample(1)
	if a1 == b {
		t.Error("oscillator did not advance between frames")
	}
}

func TestFeedbackTapReadsPreviousFrame(t *testing.T) {
	g := newGraph(SampleRate)
	osc := newOscillator(g, WaveSawtooth, 1000)
	osc.Start(0)
	tap := newFeedbackTap(g, osc)

	// Before the source produced anything, the tap reads zero.
	l, _ := tap.sample(0)
	if l != 0 {
		t.Fatalf("tap before source output = %v, want 0", l)
	}
	srcL, _ := osc.sample(0)

	// Next frame the tap must see the previous frame's source output.
	tl, _ := tap.sample(1)
	if tl != srcL {
		t.Errorf("tap = %v, want previous source output %v", tl, srcL)
	}
}

func TestDisconnectRemovesInput(t *testing.T) {
	g := newGraph(SampleRate)
	gain := newGain(g, 1)
	c := newConst(g, 2)
	connect(c, gain)
	disconnect(c, gain)
	disconnect(c, gain) // idempotent

	if l, _ := gain.sample(0); l != 0 {
		t.Errorf("output after disconnect = %v, want 0", l)
	}
}
