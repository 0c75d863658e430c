// synth_config.go - Declarative, serializable sound patch description

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

// SoundConfig describes one synthesizable sound. It is externally owned:
// the engine treats it as immutable for the lifetime of any voice built
// from it. All numeric fields are sanitized through the parameter safety
// layer at graph-construction time, never at load time, so a malformed
// patch degrades instead of failing.
type SoundConfig struct {
	Synthesis SynthesisConfig `json:"synthesis"`
	Envelope  EnvelopeConfig  `json:"envelope"`
	Filter    *FilterConfig   `json:"filter,omitempty"`
	LFO       *LFOConfig      `json:"lfo,omitempty"`
	Effects   *EffectsConfig  `json:"effects,omitempty"`
	Dynamics  DynamicsConfig  `json:"dynamics"`
}

type SynthesisConfig struct {
	// Layers mix in insertion order. Order is only significant for
	// inter-layer FM routing (ModulatesLayer indices).
	Layers []LayerConfig `json:"layers"`
}

// LayerType tags the variant payload of a LayerConfig.
type LayerType string

const (
	LayerOscillator LayerType = "oscillator"
	LayerFM         LayerType = "fm"
	LayerNoise      LayerType = "noise"
	LayerKarplus    LayerType = "karplus"
)

// LayerConfig is a tagged variant: exactly one payload should match Type.
// A missing or unknown payload falls back to a bare sine oscillator at
// the requested frequency rather than dropping the layer silently.
type LayerConfig struct {
	Type LayerType `json:"type"`
	Gain float64   `json:"gain,omitempty"` // layer mix level, default 1

	Oscillator *OscillatorConfig `json:"oscillator,omitempty"`
	FM         *FMConfig         `json:"fm,omitempty"`
	Noise      *NoiseConfig      `json:"noise,omitempty"`
	Karplus    *KarplusConfig    `json:"karplus,omitempty"`

	Filter        *FilterConfig        `json:"filter,omitempty"`
	Envelope      *EnvelopeConfig      `json:"envelope,omitempty"`
	Saturation    *SaturationConfig    `json:"saturation,omitempty"`
	PitchEnvelope *PitchEnvelopeConfig `json:"pitchEnvelope,omitempty"`
}

type WaveShape string

const (
	WaveSine     WaveShape = "sine"
	WaveSquare   WaveShape = "square"
	WaveSawtooth WaveShape = "sawtooth"
	WaveTriangle WaveShape = "triangle"
	WaveRandom   WaveShape = "random" // LFO only: stepped sample & hold
)

type OscillatorConfig struct {
	Waveform WaveShape `json:"waveform"`
	// Voices stacks detuned unison copies (1-8).
	Voices int `json:"voices,omitempty"`
	// UnisonDetune is the symmetric spread in cents: voice 0 sits at
	// +UnisonDetune, voice N-1 at -UnisonDetune.
	UnisonDetune float64 `json:"unisonDetune,omitempty"`
	// Spread pans unison voices symmetrically across [-Spread, +Spread].
	Spread float64 `json:"spread,omitempty"`
	// Detune offsets the whole bank, in cents.
	Detune float64        `json:"detune,omitempty"`
	Sub    *SubOscillator `json:"sub,omitempty"`
}

type SubOscillator struct {
	// OctaveOffset drops the sub to frequency / 2^|OctaveOffset|.
	OctaveOffset int     `json:"octaveOffset"`
	Level        float64 `json:"level"`
}

// FMConfig describes one modulator-capable FM operator. The layer may
// output audio directly, route its modulation output into another
// layer's carrier frequency, and/or self-modulate through a one-sample
// feedback loop.
type FMConfig struct {
	Waveform WaveShape `json:"waveform,omitempty"`
	// Ratio scales the note frequency into the carrier frequency.
	Ratio float64 `json:"ratio"`
	// ModulationIndex is the user-facing 0-100ish depth control.
	ModulationIndex float64 `json:"modulationIndex"`
	// Feedback (0..0.9) routes the operator into its own frequency via a
	// one-sample delay.
	Feedback float64 `json:"feedback,omitempty"`
	// ModulatesLayer names another layer by index in Synthesis.Layers.
	// Same-graph cross-reference, not ownership.
	ModulatesLayer *int `json:"modulatesLayer,omitempty"`
	// OutputsAudio forces the operator into (or out of) the audible mix.
	// Default: audible unless it modulates another layer.
	OutputsAudio *bool `json:"outputsAudio,omitempty"`
	// OperatorEnvelope shapes the modulation depth over the note.
	OperatorEnvelope *EnvelopeConfig `json:"operatorEnvelope,omitempty"`
}

type NoiseColor string

const (
	NoiseWhite  NoiseColor = "white"
	NoisePink   NoiseColor = "pink"
	NoiseBrown  NoiseColor = "brown"
	NoiseNeural NoiseColor = "neural"
)

type NoiseConfig struct {
	Color NoiseColor `json:"color"`
}

type KarplusConfig struct {
	// Damping 0..1; higher input damping means shorter sustain.
	Damping float64 `json:"damping"`
	// Inharmonicity 0..1 stretches upper partials (piano/bell character).
	Inharmonicity float64 `json:"inharmonicity,omitempty"`
}

type FilterType string

const (
	FilterLowpass   FilterType = "lowpass"
	FilterHighpass  FilterType = "highpass"
	FilterBandpass  FilterType = "bandpass"
	FilterNotch     FilterType = "notch"
	FilterLowShelf  FilterType = "lowshelf"
	FilterHighShelf FilterType = "highshelf"
	FilterPeaking   FilterType = "peaking"
)

type FilterConfig struct {
	Type      FilterType      `json:"type"`
	Frequency float64         `json:"frequency"`
	Q         float64         `json:"q,omitempty"`
	GainDB    float64         `json:"gainDb,omitempty"` // shelf/peaking only
	Envelope  *EnvelopeConfig `json:"envelope,omitempty"`
	// EnvelopeAmount is the peak frequency offset in Hz applied by the
	// filter envelope.
	EnvelopeAmount float64 `json:"envelopeAmount,omitempty"`
}

// EnvelopeConfig is a 4-phase ADSR contour. Attack/Decay/Release are in
// seconds, Sustain is a 0-1 fraction of the peak.
type EnvelopeConfig struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// PitchEnvelopeConfig ramps a pitch multiplier with the usual 4-phase
// contour. Amount is the peak offset in cents; the multiplier applied to
// the oscillator is 2^(cents/1200).
type PitchEnvelopeConfig struct {
	Amount  float64 `json:"amount"`
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

type SaturationType string

const (
	SaturationSoft SaturationType = "soft"
	SaturationHard SaturationType = "hard"
	SaturationTube SaturationType = "tube"
	SaturationTape SaturationType = "tape"
)

type SaturationConfig struct {
	Type  SaturationType `json:"type"`
	Drive float64        `json:"drive"` // 0..1
	Mix   float64        `json:"mix"`   // 0..1 dry/wet
}

type LFOTarget string

const (
	LFOTargetPitch     LFOTarget = "pitch"
	LFOTargetFilter    LFOTarget = "filter"
	LFOTargetAmplitude LFOTarget = "amplitude"
	LFOTargetPan       LFOTarget = "pan"
)

type LFOConfig struct {
	Waveform  WaveShape `json:"waveform"`
	Frequency float64   `json:"frequency"`
	Depth     float64   `json:"depth"`
	Target    LFOTarget `json:"target"`
	// Delay holds the LFO at zero, Fade then ramps it in linearly.
	Delay float64 `json:"delay,omitempty"`
	Fade  float64 `json:"fade,omitempty"`
}

// EffectsConfig is an ordered chain of independently optional stages.
// Absent stages contribute zero nodes; the order is fixed:
// EQ -> Distortion -> Compressor -> Chorus -> Delay -> Reverb.
type EffectsConfig struct {
	EQ         *EQConfig         `json:"eq,omitempty"`
	Distortion *DistortionConfig `json:"distortion,omitempty"`
	Compressor *CompressorConfig `json:"compressor,omitempty"`
	Chorus     *ChorusConfig     `json:"chorus,omitempty"`
	Delay      *DelayConfig      `json:"delay,omitempty"`
	Reverb     *ReverbConfig     `json:"reverb,omitempty"`
}

type EQConfig struct {
	LowGainDB  float64 `json:"lowGainDb,omitempty"`
	MidGainDB  float64 `json:"midGainDb,omitempty"`
	HighGainDB float64 `json:"highGainDb,omitempty"`
	MidHz      float64 `json:"midHz,omitempty"`
}

type DistortionType string

const (
	DistortionHard       DistortionType = "hard"
	DistortionFuzz       DistortionType = "fuzz"
	DistortionWaveshaper DistortionType = "waveshaper"
	DistortionSoft       DistortionType = "soft"
	DistortionBitcrush   DistortionType = "bitcrush"
)

type DistortionConfig struct {
	Type   DistortionType `json:"type"`
	Amount float64        `json:"amount"` // 0..1
	Mix    float64        `json:"mix"`    // 0..1
}

type CompressorConfig struct {
	ThresholdDB float64 `json:"thresholdDb"`
	Ratio       float64 `json:"ratio"`
	Attack      float64 `json:"attack"`
	Release     float64 `json:"release"`
	KneeDB      float64 `json:"kneeDb,omitempty"`
}

type ChorusConfig struct {
	Rate  float64 `json:"rate"`
	Depth float64 `json:"depth"` // 0..1 of the maximum modulation depth
	Mix   float64 `json:"mix"`
	// Feedback > 0 turns the left delay line into a flanger-style
	// resonator. Only the left line feeds back.
	Feedback float64 `json:"feedback,omitempty"`
}

type DelayConfig struct {
	Time     float64 `json:"time"`
	Feedback float64 `json:"feedback"`
	Mix      float64 `json:"mix"`
}

type ReverbConfig struct {
	// Decay is the tail length in seconds of the generated impulse
	// response, Damping 0..1 rolls off its high end.
	Decay   float64 `json:"decay"`
	Damping float64 `json:"damping,omitempty"`
	Mix     float64 `json:"mix"`
}

type DynamicsConfig struct {
	// Velocity scales note-on gain in the real-time path.
	Velocity float64 `json:"velocity,omitempty"`
}

// DefaultConfig returns a minimal playable patch: one sine layer with a
// gentle ADSR. Used as the fallback when a patch fails to load.
func DefaultConfig() SoundConfig {
	return SoundConfig{
		Synthesis: SynthesisConfig{
			Layers: []LayerConfig{{
				Type:       LayerOscillator,
				Oscillator: &OscillatorConfig{Waveform: WaveSine, Voices: 1},
			}},
		},
		Envelope: EnvelopeConfig{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3},
		Dynamics: DynamicsConfig{Velocity: DefaultVelocityScale},
	}
}

// layerGain returns the sanitized mix level for a layer (default 1).
func layerGain(l LayerConfig) float64 {
	if l.Gain == 0 {
		return 1
	}
	return clampRange(l.Gain, 0, 2, 1)
}
