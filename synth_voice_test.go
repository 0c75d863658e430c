// synth_voice_test.go - Voice lifecycle and polyphony tests

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

func renderSeconds(e *Engine, seconds float64) {
	buf := make([]float32, 2*441)
	blocks := int(seconds * SampleRate / 441)
	for i := 0; i < blocks; i++ {
		e.RenderBlock(buf)
	}
}

func TestPolyphonyCeilingNeverExceeded(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.SetPolyphony(3)

	for note := 60; note < 70; note++ {
		e.NoteOn(note, 1)
		if got := e.ActiveVoices(); got > 3 {
			t.Fatalf("after note %d: %d active voices, ceiling 3", note, got)
		}
	}
	if got := e.ActiveVoices(); got != 3 {
		t.Errorf("final active voices = %d, want 3", got)
	}
}

func TestStealTargetsOldestVoice(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.SetPolyphony(2)

	e.NoteOn(60, 1)
	renderSeconds(e, 0.01) // age the first voice
	e.NoteOn(62, 1)
	renderSeconds(e, 0.01)
	e.NoteOn(64, 1) // must steal note 60

	if _, ok := e.vm.byNote[60]; ok {
		t.Error("oldest voice (60) still active after steal")
	}
	for _, note := range []int{62, 64} {
		if _, ok := e.vm.byNote[note]; !ok {
			t.Errorf("voice %d missing after steal", note)
		}
	}
}

func TestStolenVoiceStopsCountingImmediately(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.SetPolyphony(1)

	e.NoteOn(60, 1)
	e.NoteOn(62, 1)

	if got := e.ActiveVoices(); got != 1 {
		t.Errorf("active voices = %d, want 1", got)
	}
	if len(e.vm.draining) != 1 {
		t.Errorf("draining voices = %d, want 1", len(e.vm.draining))
	}
}

func TestRetriggerReplacesVoice(t *testing.T) {
	e := NewEngine(DefaultConfig())

	e.NoteOn(60, 1)
	first := e.vm.byNote[60]
	e.NoteOn(60, 1)
	second := e.vm.byNote[60]

	if first == second {
		t.Fatal("retrigger did not build a new voice")
	}
	if got := e.ActiveVoices(); got != 1 {
		t.Errorf("active voices after retrigger = %d, want 1", got)
	}
	if !first.released() {
		t.Error("retriggered-over voice was not released")
	}
}

func TestReleasedVoiceCountsUntilDrained(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.NoteOn(60, 1)
	e.NoteOff(60)

	if got := e.ActiveVoices(); got != 1 {
		t.Fatalf("voice vanished at note-off; active = %d", got)
	}

	// Default release is 0.3s plus the cleanup margin.
	renderSeconds(e, 0.5)
	if got := e.ActiveVoices(); got != 0 {
		t.Errorf("voice not reaped after release tail; active = %d", got)
	}
}

func TestNoteOffIdempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.NoteOn(60, 1)
	v := e.vm.byNote[60]

	e.NoteOff(60)
	releaseAt := v.releaseAt
	removeAt := v.removeAt
	events := len(v.graph.ampParam.Events())

	e.NoteOff(60)
	if v.releaseAt != releaseAt || v.removeAt != removeAt {
		t.Error("second note-off moved the release schedule")
	}
	if got := len(v.graph.ampParam.Events()); got != events {
		t.Errorf("second note-off rescheduled automation: %d -> %d events", events, got)
	}
	// Note-off for a note that never sounded is a no-op too.
	e.NoteOff(99)
}

func TestVoiceTeardownIdempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.NoteOn(60, 1)
	v := e.vm.byNote[60]
	chain := v.chain
	if chain.voiceCount != 1 {
		t.Fatalf("chain voice count = %d, want 1", chain.voiceCount)
	}

	now := e.graph.Now()
	e.vm.free(v, now)
	e.vm.free(v, now) // second teardown must be a no-op

	if chain.voiceCount != 0 {
		t.Errorf("chain voice count = %d after double free, want 0", chain.voiceCount)
	}
	if !v.freed {
		t.Error("voice not marked freed")
	}
}

func TestAllNotesOffReleasesEverything(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for note := 60; note < 64; note++ {
		e.NoteOn(note, 1)
	}
	e.AllNotesOff()
	for _, v := range e.vm.voices {
		if !v.released() {
			t.Fatalf("voice %d not released", v.note)
		}
	}
}

func TestUpdateConfigRetiresChainUntilVoicesDrain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Effects = &EffectsConfig{Delay: &DelayConfig{Time: 0.1, Feedback: 0.2, Mix: 0.3}}
	e := NewEngine(cfg)

	e.NoteOn(60, 1)
	oldChain := e.chain

	cfg2 := DefaultConfig()
	e.UpdateConfig(cfg2)

	if e.chain == oldChain {
		t.Fatal("config update did not build a new chain")
	}
	if len(e.retired) != 1 || e.retired[0] != oldChain {
		t.Fatal("old chain with live voices must be retired, not dropped")
	}
	// The sounding voice still feeds the old chain.
	if e.vm.byNote[60].chain != oldChain {
		t.Error("existing voice migrated to the new chain")
	}

	// New notes land on the new chain.
	e.NoteOn(62, 1)
	if e.vm.byNote[62].chain != e.chain {
		t.Error("new voice not on the new chain")
	}

	// Once the old chain's voices drain, it is dropped.
	e.NoteOff(60)
	renderSeconds(e, 0.5)
	if len(e.retired) != 0 {
		t.Errorf("retired chains not cleaned up: %d remain", len(e.retired))
	}
}

func TestNoteToHz(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653005986},
	}
	for _, tt := range tests {
		if got := noteToHz(tt.note); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("noteToHz(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}
