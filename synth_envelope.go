// synth_envelope.go - ADSR scheduling for amplitude, filter and pitch contours

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// Envelopes are committed as timestamped automation, not evaluated
// callbacks: once a note starts, the whole attack->decay->sustain
// contour is written onto the Param. Only the transition into Release is
// event-driven (note-off or a forced steal). Offline and real-time paths
// share these functions, so identical parameters produce identical ramp
// shapes on both timelines.

// EnvelopePhase is the observable state of a scheduled contour.
type EnvelopePhase int

const (
	PhaseIdle EnvelopePhase = iota
	PhaseAttack
	PhaseDecay
	PhaseSustain
	PhaseRelease
	PhaseSilent
)

// phaseAt reports which phase a contour scheduled at t0 is in at time t.
// releaseAt is +Inf while no release has been triggered.
func phaseAt(env EnvelopeConfig, t0, releaseAt, t float64) EnvelopePhase {
	env = sanitizeADSR(env)
	switch {
	case t < t0:
		return PhaseIdle
	case t >= releaseAt+env.Release:
		return PhaseSilent
	case t >= releaseAt:
		return PhaseRelease
	case t < t0+env.Attack:
		return PhaseAttack
	case t < t0+env.Attack+env.Decay:
		return PhaseDecay
	default:
		return PhaseSustain
	}
}

// scheduleAmpADSR stamps the committed attack/decay/sustain contour onto
// an amplitude param: exactly four points (floor anchor, attack ramp,
// decay ramp, sustain hold anchor). The floor is EnvelopeFloor because
// exponential ramps cannot target zero. Returns the sustain level.
func scheduleAmpADSR(p *Param, env EnvelopeConfig, peak, t0 float64) float64 {
	env = sanitizeADSR(env)
	peak = math.Max(EnvelopeFloor, finiteOr(peak, 1))
	sustain := math.Max(EnvelopeFloor, env.Sustain*peak)

	attackEnd := t0 + env.Attack
	decayEnd := attackEnd + env.Decay

	p.SetValueAtTime(EnvelopeFloor, t0)
	p.ExponentialRampToValueAtTime(peak, attackEnd)
	p.ExponentialRampToValueAtTime(sustain, decayEnd)
	p.SetValueAtTime(sustain, decayEnd)
	return sustain
}

// scheduleAmpRelease triggers the release phase at time now: two more
// points, a current-value anchor and the ramp to the floor. Cancelling
// first is required so a pending contour cannot resume after the ramp.
func scheduleAmpRelease(p *Param, release, now float64) {
	release = clampRange(release, MinStageTime, MaxReleaseTime, MinStageTime)
	cur := math.Max(EnvelopeFloor, p.ValueAt(now))
	p.CancelScheduledValues(now)
	p.SetValueAtTime(cur, now)
	p.ExponentialRampToValueAtTime(EnvelopeFloor, now+release)
}

// scheduleAmpReleaseAt commits the release phase at an absolute time on
// the offline timeline: the ramp starts at t0+duration-release and ends
// exactly at t0+duration.
func scheduleAmpReleaseAt(p *Param, env EnvelopeConfig, t0, duration float64) {
	env = sanitizeADSR(env)
	start := t0 + duration - env.Release
	if start < t0 {
		start = t0
	}
	cur := math.Max(EnvelopeFloor, p.ValueAt(start))
	p.CancelScheduledValues(start)
	p.SetValueAtTime(cur, start)
	p.ExponentialRampToValueAtTime(EnvelopeFloor, t0+duration)
}

// scheduleFilterADSR applies the same 4-phase shape to a frequency
// param: base -> base+amount -> sustain point, all clamped to the
// filter's stable range. The "floor" of a filter contour is its base
// frequency, which is always positive, so exponential ramps are safe.
func scheduleFilterADSR(p *Param, env EnvelopeConfig, base, amount, t0 float64) {
	env = sanitizeADSR(env)
	base = clampFilterHz(base)
	peak := clampFilterHz(base + finiteOr(amount, 0))
	sustain := clampFilterHz(base + (peak-base)*env.Sustain)

	attackEnd := t0 + env.Attack
	decayEnd := attackEnd + env.Decay

	p.SetValueAtTime(base, t0)
	p.ExponentialRampToValueAtTime(peak, attackEnd)
	p.ExponentialRampToValueAtTime(sustain, decayEnd)
	p.SetValueAtTime(sustain, decayEnd)
}

// scheduleFilterRelease ramps a filter contour back to its base.
func scheduleFilterRelease(p *Param, base, release, now float64) {
	release = clampRange(release, MinStageTime, MaxReleaseTime, MinStageTime)
	cur := clampFilterHz(p.ValueAt(now))
	p.CancelScheduledValues(now)
	p.SetValueAtTime(cur, now)
	p.ExponentialRampToValueAtTime(clampFilterHz(base), now+release)
}

// schedulePitchADSR writes a pitch contour in cents onto a detune-summed
// param. Linear ramps in cents are exponential ramps of the 2^(c/1200)
// frequency multiplier; working in cents lets the contour pass through
// zero, which a ratio-domain exponential ramp cannot.
func schedulePitchADSR(p *Param, env EnvelopeConfig, amountCents, t0 float64) {
	env = sanitizeADSR(env)
	amountCents = clampRange(amountCents, -4800, 4800, 0)
	sustain := amountCents * env.Sustain

	attackEnd := t0 + env.Attack
	decayEnd := attackEnd + env.Decay

	p.SetValueAtTime(0, t0)
	p.LinearRampToValueAtTime(amountCents, attackEnd)
	p.LinearRampToValueAtTime(sustain, decayEnd)
	p.SetValueAtTime(sustain, decayEnd)
}

// schedulePitchRelease ramps a pitch contour back to zero cents.
func schedulePitchRelease(p *Param, release, now float64) {
	release = clampRange(release, MinStageTime, MaxReleaseTime, MinStageTime)
	cur := p.ValueAt(now)
	p.CancelScheduledValues(now)
	p.SetValueAtTime(cur, now)
	p.LinearRampToValueAtTime(0, now+release)
}

// pitchEnvToADSR reuses the 4-field contour of a pitch envelope config.
func pitchEnvToADSR(cfg PitchEnvelopeConfig) EnvelopeConfig {
	return EnvelopeConfig{
		Attack:  cfg.Attack,
		Decay:   cfg.Decay,
		Sustain: cfg.Sustain,
		Release: cfg.Release,
	}
}
