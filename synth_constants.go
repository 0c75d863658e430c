// synth_constants.go - Shared constants and bounds tables for the synthesis engine

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

const (
	// SampleRate is fixed across the whole engine. Every buffer length,
	// automation timestamp and delay coefficient assumes it.
	SampleRate = 44100

	NumOutputChannels = 2
)

const (
	// Envelope timing floors. Exponential ramps cannot target exactly 0,
	// so all amplitude automation bottoms out at EnvelopeFloor.
	EnvelopeFloor  = 1e-4
	MinStageTime   = 0.001
	MaxAttackTime  = 5.0
	MaxDecayTime   = 5.0
	MaxReleaseTime = 10.0
)

const (
	MinOscillatorHz = 20.0
	MaxOscillatorHz = 20000.0

	MinFilterHz = 20.0
	MaxFilterHz = 20000.0
	MinFilterQ  = 0.0001
	MaxFilterQ  = 30.0
)

const (
	MaxUnisonVoices = 8
	MaxLayers       = 8
)

const (
	// FMIndexScale converts the user-facing 0-100ish modulation index into
	// a frequency-deviation gain relative to the carrier. Pinned by tests.
	FMIndexScale = 1.0 / 100.0

	// FMFeedbackScale sizes the one-sample self-feedback gain
	// (feedback * carrierHz * FMFeedbackScale).
	FMFeedbackScale = 2.0
	MaxFMFeedback   = 0.9
	MaxFMRatio      = 32.0
)

const (
	NoiseBufferSeconds   = 2.0
	KarplusBufferSeconds = 4.0
	KarplusMinHz         = 20.0

	// Input damping 0..1 maps onto a stored feedback coefficient running
	// from the long-sustain end down to the short-sustain end. The
	// direction is inverted on purpose; do not "fix" it.
	KarplusFeedbackMax = 0.9999
	KarplusFeedbackMin = 0.95

	KarplusAllpassStages = 4
	KarplusAllpassScale  = 0.85
)

const (
	SaturationTableSize = 256
)

const (
	// Bitcrush bit depth mapping: bits = round(16 - amount*14), clamped.
	BitcrushMaxBits = 16
	BitcrushMinBits = 2

	MinCompThreshold = -60.0
	MaxCompThreshold = 0.0
	MinCompRatio     = 1.0
	MaxCompRatio     = 20.0
	MinCompAttack    = 0.0005
	MaxCompAttack    = 1.0
	MinCompRelease   = 0.01
	MaxCompRelease   = 2.0
	MaxCompKnee      = 40.0

	MinReverbDecay = 0.05
	MaxReverbDecay = 4.0

	MaxDelayTime     = 2.0
	MaxDelayFeedback = 0.95

	ChorusBaseDelay = 0.012
	// Second chorus line sits ~10% away from the first.
	ChorusDelaySpread = 1.1
	MaxChorusDepth    = 0.005
)

const (
	EQLowShelfHz      = 200.0
	EQHighShelfHz     = 4000.0
	EQDefaultMidHz    = 1000.0
	MaxEQGainDB       = 24.0
	ConvolverBlock    = 256
	LFOStepsPerSecond = 10.0
	LFOCentsPerDepth  = 100.0
	MaxLFOHz          = 40.0
)

const (
	DefaultPolyphony = 8
	MaxPolyphony     = 32

	// Fast release used when a voice is stolen or retriggered.
	StealReleaseTime = 0.01

	// Extra tail past the release ramp before a voice is torn down.
	VoiceCleanupMargin = 0.1
)

const DefaultVelocityScale = 1.0
