// synth_engine.go - Real-time polyphonic engine front end

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"math"
	"sync"
)

// AudioOutput is the platform playback backend. Implementations pull
// interleaved stereo float32 blocks from a render callback.
type AudioOutput interface {
	Start() error
	Stop() error
	Close() error
}

// Engine is the real-time front end: it owns the render timeline, the
// voice manager and the current effects chain, and renders under a
// single mutex. Note events take effect at the next rendered sample.
type Engine struct {
	mu      sync.Mutex
	graph   *Graph
	cfg     SoundConfig
	chain   *effectsChain
	retired []*effectsChain
	vm      *voiceManager
	master  *gainNode
}

// NewEngine builds an engine for one sound configuration with the
// default polyphony ceiling.
func NewEngine(cfg SoundConfig) *Engine {
	g := newGraph(SampleRate)
	e := &Engine{
		graph:  g,
		cfg:    cfg,
		vm:     newVoiceManager(DefaultPolyphony),
		master: newGain(g, 1),
	}
	e.chain = buildEffectsChain(g, cfg.Effects)
	connect(e.chain.output, e.master)
	return e
}

// SetPolyphony changes the voice ceiling. Voices above the new ceiling
// are stolen oldest-first.
func (e *Engine) SetPolyphony(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.maxVoices = clampInt(n, 1, MaxPolyphony)
	now := e.graph.Now()
	for e.vm.activeCount() > e.vm.maxVoices {
		e.vm.stealOldest(now)
	}
}

// noteToHz converts a MIDI note number to equal-tempered frequency.
func noteToHz(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}

// NoteOn starts a voice for the note. A retrigger of a sounding note
// fast-releases the old voice first; at the polyphony ceiling the oldest
// voice is stolen the same way.
func (e *Engine) NoteOn(note int, velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.graph.Now()

	if old := e.vm.byNote[note]; old != nil {
		e.vm.retire(old, now)
	}
	if e.vm.activeCount() >= e.vm.maxVoices {
		e.vm.stealOldest(now)
	}

	freq := noteToHz(note)
	vg := buildVoiceGraph(e.graph, e.cfg, freq, now, 0, velocity)
	connect(vg.output, e.chain.input)
	e.chain.voiceCount++
	vg.start(now)

	e.vm.add(&ActiveVoice{
		note:      note,
		freq:      freq,
		graph:     vg,
		chain:     e.chain,
		startedAt: now,
		releaseAt: math.Inf(1),
		removeAt:  math.Inf(1),
	})
}

// NoteOff starts the release phase of the note's voice. The voice keeps
// counting against the ceiling until its release tail drains. A note-off
// for a silent or already-released note is a no-op.
func (e *Engine) NoteOff(note int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.release(e.vm.byNote[note], sanitizeADSR(e.cfg.Envelope).Release, e.graph.Now())
}

// AllNotesOff releases every sounding voice.
func (e *Engine) AllNotesOff() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.releaseAll(sanitizeADSR(e.cfg.Envelope).Release, e.graph.Now())
}

// UpdateConfig swaps the sound configuration. Voices started before the
// swap keep their original graphs and keep feeding their original
// effects chain until they drain; new notes use the new chain. No voice
// is migrated between chains mid-note.
func (e *Engine) UpdateConfig(cfg SoundConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	old := e.chain
	e.chain = buildEffectsChain(e.graph, cfg.Effects)
	connect(e.chain.output, e.master)
	if old.voiceCount == 0 {
		disconnect(old.output, e.master)
	} else {
		e.retired = append(e.retired, old)
	}
}

// RenderBlock fills out with interleaved stereo float32 samples and
// advances the engine timeline by len(out)/2 frames. Drained voices and
// emptied retired chains are torn down at block boundaries.
func (e *Engine) RenderBlock(out []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		l, r := e.master.sample(e.graph.frame)
		out[2*i] = float32(clampUnit(l))
		out[2*i+1] = float32(clampUnit(r))
		e.graph.frame++
	}
	now := e.graph.Now()
	e.vm.reap(now)
	kept := e.retired[:0]
	for _, c := range e.retired {
		if c.voiceCount == 0 {
			disconnect(c.output, e.master)
			continue
		}
		kept = append(kept, c)
	}
	e.retired = kept
}

// ActiveVoices reports how many voices currently count against the
// polyphony ceiling.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.activeCount()
}
