// synth_voice.go - Voice lifecycle: allocation, stealing, draining, teardown

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// ActiveVoice is one sounding note. Voices released normally keep
// counting against the polyphony ceiling until their cleanup time
// passes; voices removed by stealing or retriggering stop counting
// immediately and drain out through a fast release ramp.
type ActiveVoice struct {
	note      int
	freq      float64
	graph     *voiceGraph
	chain     *effectsChain
	startedAt float64
	releaseAt float64 // +Inf until the release phase is triggered
	removeAt  float64 // +Inf until teardown is scheduled
	freed     bool
}

func (v *ActiveVoice) released() bool {
	return !math.IsInf(v.releaseAt, 1)
}

// voiceManager enforces the polyphony ceiling and owns teardown.
type voiceManager struct {
	maxVoices int
	voices    []*ActiveVoice
	byNote    map[int]*ActiveVoice
	draining  []*ActiveVoice
}

func newVoiceManager(maxVoices int) *voiceManager {
	return &voiceManager{
		maxVoices: clampInt(maxVoices, 1, MaxPolyphony),
		byNote:    make(map[int]*ActiveVoice),
	}
}

func (m *voiceManager) activeCount() int {
	return len(m.voices)
}

// add registers a freshly started voice. The caller must have made room
// first (retire / stealOldest).
func (m *voiceManager) add(v *ActiveVoice) {
	m.voices = append(m.voices, v)
	m.byNote[v.note] = v
}

// oldest returns the longest-sounding counted voice.
func (m *voiceManager) oldest() *ActiveVoice {
	var best *ActiveVoice
	for _, v := range m.voices {
		if best == nil || v.startedAt < best.startedAt {
			best = v
		}
	}
	return best
}

// release starts the normal release phase of a counted voice. Idempotent:
// a second note-off on the same voice is a no-op.
func (m *voiceManager) release(v *ActiveVoice, release, now float64) {
	if v == nil || v.freed || v.released() {
		return
	}
	v.releaseAt = now
	v.graph.triggerRelease(release, now)
	v.removeAt = now + release + VoiceCleanupMargin
}

// retire removes a voice from the counted set immediately, fast-releases
// it and parks it on the draining list. Used for stealing and for
// same-note retriggers.
func (m *voiceManager) retire(v *ActiveVoice, now float64) {
	if v == nil || v.freed {
		return
	}
	for i, x := range m.voices {
		if x == v {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			break
		}
	}
	if m.byNote[v.note] == v {
		delete(m.byNote, v.note)
	}
	v.releaseAt = now
	v.graph.triggerRelease(StealReleaseTime, now)
	v.removeAt = now + StealReleaseTime + VoiceCleanupMargin
	m.draining = append(m.draining, v)
}

// stealOldest makes room for a new voice when the ceiling is hit.
func (m *voiceManager) stealOldest(now float64) {
	m.retire(m.oldest(), now)
}

// free tears one voice down: detach from its chain, stop its sources,
// decrement the chain's live-voice count. Safe to call repeatedly.
func (m *voiceManager) free(v *ActiveVoice, now float64) {
	if v == nil || v.freed {
		return
	}
	v.freed = true
	disconnect(v.graph.output, v.chain.input)
	v.chain.voiceCount--
	v.graph.stopAll(now)
	if m.byNote[v.note] == v {
		delete(m.byNote, v.note)
	}
}

// reap frees every voice whose cleanup time has passed.
func (m *voiceManager) reap(now float64) {
	kept := m.voices[:0]
	for _, v := range m.voices {
		if v.removeAt <= now {
			m.free(v, now)
			continue
		}
		kept = append(kept, v)
	}
	m.voices = kept

	drainKept := m.draining[:0]
	for _, v := range m.draining {
		if v.removeAt <= now {
			m.free(v, now)
			continue
		}
		drainKept = append(drainKept, v)
	}
	m.draining = drainKept
}

// releaseAll starts the release phase on every counted voice.
func (m *voiceManager) releaseAll(release, now float64) {
	for _, v := range m.voices {
		m.release(v, release, now)
	}
}
