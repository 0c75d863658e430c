// synth_patch_load_test.go - Patch loading tests

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"os"
	"path/filepath"
	"testing"
)

const jsonPatch = `{
	"synthesis": {
		"layers": [
			{"type": "oscillator", "oscillator": {"waveform": "sawtooth", "voices": 4, "unisonDetune": 12}},
			{"type": "noise", "gain": 0.5, "noise": {"color": "pink"}}
		]
	},
	"envelope": {"attack": 0.01, "decay": 0.2, "sustain": 0.6, "release": 0.4},
	"filter": {"type": "lowpass", "frequency": 2500},
	"effects": {"reverb": {"decay": 1.2, "mix": 0.25}}
}`

const luaPatch = `return {
	synthesis = {
		layers = {
			{ type = "oscillator", oscillator = { waveform = "sawtooth", voices = 4, unisonDetune = 12 } },
			{ type = "noise", gain = 0.5, noise = { color = "pink" } },
		},
	},
	envelope = { attack = 0.01, decay = 0.2, sustain = 0.6, release = 0.4 },
	filter = { type = "lowpass", frequency = 2500 },
	effects = { reverb = { decay = 1.2, mix = 0.25 } },
}`

func writePatch(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkLoadedPatch(t *testing.T, cfg SoundConfig) {
	t.Helper()
	if len(cfg.Synthesis.Layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(cfg.Synthesis.Layers))
	}
	osc := cfg.Synthesis.Layers[0]
	if osc.Type != LayerOscillator || osc.Oscillator == nil {
		t.Fatalf("layer 0: %+v", osc)
	}
	if osc.Oscillator.Waveform != WaveSawtooth || osc.Oscillator.Voices != 4 {
		t.Errorf("oscillator payload: %+v", osc.Oscillator)
	}
	noise := cfg.Synthesis.Layers[1]
	if noise.Type != LayerNoise || noise.Noise == nil || noise.Noise.Color != NoisePink {
		t.Errorf("noise payload: %+v", noise)
	}
	if noise.Gain != 0.5 {
		t.Errorf("layer gain = %v, want 0.5", noise.Gain)
	}
	if cfg.Envelope.Release != 0.4 {
		t.Errorf("envelope release = %v", cfg.Envelope.Release)
	}
	if cfg.Filter == nil || cfg.Filter.Frequency != 2500 {
		t.Errorf("filter: %+v", cfg.Filter)
	}
	if cfg.Effects == nil || cfg.Effects.Reverb == nil || cfg.Effects.Reverb.Decay != 1.2 {
		t.Errorf("effects: %+v", cfg.Effects)
	}
}

func TestLoadPatchJSON(t *testing.T) {
	path := writePatch(t, "kick.json", jsonPatch)
	cfg, err := LoadPatchFile(path)
	if err != nil {
		t.Fatal(err)
	}
	checkLoadedPatch(t, cfg)
}

func TestLoadPatchLua(t *testing.T) {
	path := writePatch(t, "kick.lua", luaPatch)
	cfg, err := LoadPatchFile(path)
	if err != nil {
		t.Fatal(err)
	}
	checkLoadedPatch(t, cfg)
}

func TestLoadPatchJSONAndLuaEquivalent(t *testing.T) {
	j, err := LoadPatchFile(writePatch(t, "p.json", jsonPatch))
	if err != nil {
		t.Fatal(err)
	}
	l, err := LoadPatchFile(writePatch(t, "p.lua", luaPatch))
	if err != nil {
		t.Fatal(err)
	}
	if j.Envelope != l.Envelope {
		t.Errorf("envelopes differ: %+v vs %+v", j.Envelope, l.Envelope)
	}
	if *j.Filter != *l.Filter {
		t.Errorf("filters differ: %+v vs %+v", j.Filter, l.Filter)
	}
	if j.Synthesis.Layers[0].Oscillator.UnisonDetune != l.Synthesis.Layers[0].Oscillator.UnisonDetune {
		t.Error("unison detune differs between formats")
	}
}

func TestLoadPatchErrors(t *testing.T) {
	if _, err := LoadPatchFile("missing.json"); err == nil {
		t.Error("missing file must error")
	}
	if _, err := LoadPatchFile(writePatch(t, "p.txt", "x")); err == nil {
		t.Error("unknown extension must error")
	}
	if _, err := LoadPatchFile(writePatch(t, "bad.json", "{not json")); err == nil {
		t.Error("malformed JSON must error")
	}
	if _, err := LoadPatchFile(writePatch(t, "bad.lua", "return 42")); err == nil {
		t.Error("non-table Lua return must error")
	}
	if _, err := LoadPatchFile(writePatch(t, "boom.lua", "error('nope')")); err == nil {
		t.Error("Lua runtime error must propagate")
	}
}
