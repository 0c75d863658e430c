// synth_sources.go - Layer signal sources and the shared voice graph builder

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import "math"

// layerResult is the output of the signal source factory for one layer.
type layerResult struct {
	sources []schedulable
	// output is the audible node; nil when the layer only modulates.
	output node
	// carrier is the frequency-modulatable oscillator for FM routing
	// targets (FM operators and plain oscillator layers expose one).
	carrier     *oscNode
	carrierFreq float64
	// oscDetunes collects every oscillator-type detune param in the
	// layer; pitch envelopes and pitch-target LFOs sum into all of them.
	oscDetunes []*Param
}

// buildLayerSource constructs the raw sound generator for one layer. A
// missing or unknown payload falls back to a bare sine oscillator at the
// requested frequency instead of dropping the layer.
func buildLayerSource(g *Graph, layer LayerConfig, freq float64) layerResult {
	switch layer.Type {
	case LayerOscillator:
		if layer.Oscillator != nil {
			return buildOscillatorLayer(g, layer.Oscillator, freq)
		}
	case LayerFM:
		if layer.FM != nil {
			return buildFMLayer(g, layer.FM, freq)
		}
	case LayerNoise:
		if layer.Noise != nil {
			return buildNoiseLayer(g, layer.Noise)
		}
	case LayerKarplus:
		if layer.Karplus != nil {
			return buildKarplusLayer(g, layer.Karplus, freq)
		}
	}
	return defaultSineLayer(g, freq)
}

func defaultSineLayer(g *Graph, freq float64) layerResult {
	osc := newOscillator(g, WaveSine, freq)
	return layerResult{
		sources:     []schedulable{osc},
		output:      osc,
		carrier:     osc,
		carrierFreq: clampOscillatorHz(freq),
		oscDetunes:  []*Param{osc.Detune},
	}
}

// unisonDetuneOffset spreads unison voices symmetrically in cents:
// voice 0 sits at +spread, voice n-1 at -spread, monotonic between.
func unisonDetuneOffset(i, n int, spread float64) float64 {
	if n <= 1 {
		return 0
	}
	return spread * (1 - 2*float64(i)/float64(n-1))
}

// unisonPanPosition spreads unison voices across [-spread, +spread].
func unisonPanPosition(i, n int, spread float64) float64 {
	if n <= 1 {
		return 0
	}
	return -spread + 2*spread*float64(i)/float64(n-1)
}

func buildOscillatorLayer(g *Graph, cfg *OscillatorConfig, freq float64) layerResult {
	wave := cfg.Waveform
	if wave == "" {
		wave = WaveSine
	}
	voices := cfg.Voices
	if voices == 0 {
		voices = 1
	}
	voices = clampInt(voices, 1, MaxUnisonVoices)
	baseDetune := clampRange(cfg.Detune, -4800, 4800, 0)

	// Single plain oscillator: no mixer overhead.
	if voices == 1 && cfg.Sub == nil {
		osc := newOscillator(g, wave, freq)
		osc.Detune.SetValue(baseDetune)
		return layerResult{
			sources:     []schedulable{osc},
			output:      osc,
			carrier:     osc,
			carrierFreq: clampOscillatorHz(freq),
			oscDetunes:  []*Param{osc.Detune},
		}
	}

	mixer := newGain(g, 1)
	res := layerResult{output: mixer, carrierFreq: clampOscillatorHz(freq)}

	detuneSpread := clampRange(cfg.UnisonDetune, 0, 1200, 0)
	panSpread := clamp01(cfg.Spread)
	// Equal-power mixing keeps the stack's loudness independent of N.
	voiceGain := 1 / math.Sqrt(float64(voices))

	for i := 0; i < voices; i++ {
		osc := newOscillator(g, wave, freq)
		osc.Detune.SetValue(baseDetune + unisonDetuneOffset(i, voices, detuneSpread))
		vg := newGain(g, voiceGain)
		connect(osc, vg)
		if panSpread > 0 && voices > 1 {
			pn := newPanner(g, unisonPanPosition(i, voices, panSpread))
			connect(vg, pn)
			connect(pn, mixer)
		} else {
			connect(vg, mixer)
		}
		res.sources = append(res.sources, osc)
		res.oscDetunes = append(res.oscDetunes, osc.Detune)
		if i == 0 {
			res.carrier = osc
		}
	}

	if cfg.Sub != nil {
		off := cfg.Sub.OctaveOffset
		if off < 0 {
			off = -off
		}
		level := clampRange(cfg.Sub.Level, 0, 1, 0.5)
		if level == 0 {
			level = 0.5
		}
		sub := newOscillator(g, WaveSine, freq/math.Exp2(float64(off)))
		sg := newGain(g, level)
		connect(sub, sg)
		connect(sg, mixer)
		res.sources = append(res.sources, sub)
		res.oscDetunes = append(res.oscDetunes, sub.Detune)
	}
	return res
}

// buildFMLayer constructs one modulator-capable operator. Inter-layer
// routing is resolved afterwards by buildVoiceGraph once every layer's
// carrier exists; only the self-feedback loop is wired here.
func buildFMLayer(g *Graph, cfg *FMConfig, freq float64) layerResult {
	wave := cfg.Waveform
	if wave == "" {
		wave = WaveSine
	}
	ratio := cfg.Ratio
	if ratio == 0 {
		ratio = 1
	}
	ratio = clampRange(ratio, 0.01, MaxFMRatio, 1)
	carrierHz := clampOscillatorHz(freq * ratio)

	osc := newOscillator(g, wave, carrierHz)
	res := layerResult{
		sources:     []schedulable{osc},
		carrier:     osc,
		carrierFreq: carrierHz,
		oscDetunes:  []*Param{osc.Detune},
	}

	if fb := clampRange(cfg.Feedback, 0, MaxFMFeedback, 0); fb > 0 {
		// One-sample feedback into the operator's own frequency. The
		// coefficient stays bounded (feedback <= 0.9), and the sine
		// output bounds the deviation, so the loop cannot run away.
		tap := newFeedbackTap(g, osc)
		fbGain := newGain(g, fb*carrierHz*FMFeedbackScale)
		connect(tap, fbGain)
		osc.Frequency.connectMod(fbGain)
	}

	audible := cfg.ModulatesLayer == nil
	if cfg.OutputsAudio != nil {
		audible = *cfg.OutputsAudio
	}
	if audible {
		res.output = osc
	}
	return res
}

func buildNoiseLayer(g *Graph, cfg *NoiseConfig) layerResult {
	src := newBufferSource(g, noiseBuffer(g.sampleRate, cfg.Color), true)
	return layerResult{sources: []schedulable{src}, output: src}
}

func buildKarplusLayer(g *Graph, cfg *KarplusConfig, freq float64) layerResult {
	buf := karplusBuffer(g.sampleRate, freq, cfg.Damping, cfg.Inharmonicity)
	src := newBufferSource(g, buf, false)
	return layerResult{sources: []schedulable{src}, output: src}
}

// --- Voice graph assembly ---

const (
	subReleaseGain = iota
	subReleaseFilter
	subReleasePitch
)

// subRelease is a secondary contour (layer envelope, filter envelope,
// pitch envelope, operator envelope) that must be released alongside the
// main amplitude envelope in the real-time path.
type subRelease struct {
	param   *Param
	kind    int
	base    float64
	release float64
}

// voiceGraph is one complete, independently releasable instantiation of
// a SoundConfig. Both synthesis front ends build it the same way; the
// offline path passes a positive duration and gets its release committed
// on the absolute timeline, the real-time path passes duration <= 0 and
// releases on demand.
type voiceGraph struct {
	sources     []schedulable
	lfoSources  []schedulable
	amp         *gainNode
	ampParam    *Param
	filter      *biquadNode
	filterBase  float64
	output      node
	oscDetunes  []*Param
	envelope    EnvelopeConfig
	peakGain    float64
	subReleases []subRelease
}

func velocityScale(cfg SoundConfig) float64 {
	v := cfg.Dynamics.Velocity
	if v == 0 {
		v = DefaultVelocityScale
	}
	return clampRange(v, 0, 2, DefaultVelocityScale)
}

// offlineReleaseStart places a release ramp so it ends at t0+duration,
// without ever starting before the note itself.
func offlineReleaseStart(t0, duration, release float64) float64 {
	start := t0 + duration - release
	if start < t0 {
		return t0
	}
	return start
}

// buildVoiceGraph assembles the full signal graph for one voice:
// sources -> per-layer shaping -> mix -> global filter -> amplitude
// control -> modulation router. Topology is wired before automation is
// stamped on any given node, and all buffer precomputation happens here,
// before the caller starts the sources.
func buildVoiceGraph(g *Graph, cfg SoundConfig, freq, start, duration, velocity float64) *voiceGraph {
	env := sanitizeADSR(cfg.Envelope)
	v := &voiceGraph{envelope: env}
	offline := duration > 0

	layers := cfg.Synthesis.Layers
	if len(layers) == 0 {
		layers = []LayerConfig{{Type: LayerOscillator}}
	}
	if len(layers) > MaxLayers {
		layers = layers[:MaxLayers]
	}

	results := make([]layerResult, len(layers))
	for i, layer := range layers {
		results[i] = buildLayerSource(g, layer, freq)
	}

	// Resolve the FM modulation DAG: every operator exists by now, so a
	// modulator's output node is available before any dependent
	// carrier's frequency param is connected. References are by layer
	// index; self and out-of-range references are ignored.
	for i, layer := range layers {
		if layer.Type != LayerFM || layer.FM == nil || layer.FM.ModulatesLayer == nil {
			continue
		}
		ti := *layer.FM.ModulatesLayer
		if ti == i || ti < 0 || ti >= len(results) {
			continue
		}
		target := results[ti]
		mod := results[i].carrier
		if mod == nil || target.carrier == nil {
			continue
		}
		// The /100 index scaling keeps default settings audibly gentle:
		// depth is a frequency deviation proportional to the modulated
		// carrier.
		index := clampRange(layer.FM.ModulationIndex, 0, 1000, 0)
		depth := index * FMIndexScale * target.carrierFreq
		mg := newGain(g, depth)
		connect(mod, mg)
		target.carrier.Frequency.connectMod(mg)

		if layer.FM.OperatorEnvelope != nil {
			opEnv := sanitizeADSR(*layer.FM.OperatorEnvelope)
			scheduleAmpADSR(mg.Gain, opEnv, depth, start)
			if offline {
				scheduleAmpReleaseAt(mg.Gain, opEnv, start, duration)
			} else {
				v.subReleases = append(v.subReleases, subRelease{
					param: mg.Gain, kind: subReleaseGain, release: opEnv.Release,
				})
			}
		}
	}

	mix := newGain(g, 1)
	for i, layer := range layers {
		r := results[i]
		v.sources = append(v.sources, r.sources...)
		v.oscDetunes = append(v.oscDetunes, r.oscDetunes...)
		if r.output == nil {
			continue
		}

		cur := r.output
		if layer.Filter != nil {
			f := buildFilter(g, layer.Filter)
			base := clampFilterHz(layer.Filter.Frequency)
			if layer.Filter.Envelope != nil {
				fEnv := sanitizeADSR(*layer.Filter.Envelope)
				scheduleFilterADSR(f.Frequency, fEnv, base, layer.Filter.EnvelopeAmount, start)
				if offline {
					scheduleFilterRelease(f.Frequency, base, fEnv.Release, offlineReleaseStart(start, duration, fEnv.Release))
				} else {
					v.subReleases = append(v.subReleases, subRelease{
						param: f.Frequency, kind: subReleaseFilter, base: base, release: fEnv.Release,
					})
				}
			}
			connect(cur, f)
			cur = f
		}
		if layer.Saturation != nil {
			ws := buildSaturation(g, layer.Saturation)
			connect(cur, ws)
			cur = ws
		}
		if layer.Envelope != nil {
			le := newGain(g, 1)
			lEnv := sanitizeADSR(*layer.Envelope)
			scheduleAmpADSR(le.Gain, lEnv, 1, start)
			if offline {
				scheduleAmpReleaseAt(le.Gain, lEnv, start, duration)
			} else {
				v.subReleases = append(v.subReleases, subRelease{
					param: le.Gain, kind: subReleaseGain, release: lEnv.Release,
				})
			}
			connect(cur, le)
			cur = le
		}
		if layer.PitchEnvelope != nil && len(r.oscDetunes) > 0 {
			pe := *layer.PitchEnvelope
			adsr := pitchEnvToADSR(pe)
			one := newConst(g, 1)
			pg := newGain(g, 0)
			connect(one, pg)
			schedulePitchADSR(pg.Gain, adsr, pe.Amount, start)
			if offline {
				rel := sanitizeADSR(adsr).Release
				schedulePitchRelease(pg.Gain, rel, offlineReleaseStart(start, duration, rel))
			} else {
				v.subReleases = append(v.subReleases, subRelease{
					param: pg.Gain, kind: subReleasePitch, release: sanitizeADSR(adsr).Release,
				})
			}
			for _, d := range r.oscDetunes {
				d.connectMod(pg)
			}
		}

		lg := newGain(g, layerGain(layer))
		connect(cur, lg)
		connect(lg, mix)
	}

	var out node = mix
	if cfg.Filter != nil {
		f := buildFilter(g, cfg.Filter)
		v.filter = f
		v.filterBase = clampFilterHz(cfg.Filter.Frequency)
		if cfg.Filter.Envelope != nil {
			fEnv := sanitizeADSR(*cfg.Filter.Envelope)
			scheduleFilterADSR(f.Frequency, fEnv, v.filterBase, cfg.Filter.EnvelopeAmount, start)
			if offline {
				scheduleFilterRelease(f.Frequency, v.filterBase, fEnv.Release, offlineReleaseStart(start, duration, fEnv.Release))
			} else {
				v.subReleases = append(v.subReleases, subRelease{
					param: f.Frequency, kind: subReleaseFilter, base: v.filterBase, release: fEnv.Release,
				})
			}
		}
		connect(out, f)
		out = f
	}

	amp := newGain(g, 1)
	v.amp = amp
	v.ampParam = amp.Gain
	v.peakGain = math.Max(EnvelopeFloor, clamp01(velocity)*velocityScale(cfg))
	scheduleAmpADSR(amp.Gain, env, v.peakGain, start)
	if offline {
		scheduleAmpReleaseAt(amp.Gain, env, start, duration)
	}
	connect(out, amp)
	out = amp

	if cfg.LFO != nil {
		out = applyLFO(g, cfg.LFO, v, out, start)
	}
	v.output = out
	return v
}

func (v *voiceGraph) start(t float64) {
	for _, s := range v.sources {
		s.Start(t)
	}
	for _, s := range v.lfoSources {
		s.Start(t)
	}
}

func (v *voiceGraph) stopAll(t float64) {
	for _, s := range v.sources {
		s.Stop(t)
	}
	for _, s := range v.lfoSources {
		s.Stop(t)
	}
}

// triggerRelease starts the release phase of every scheduled contour.
// release is the amplitude release time; sub-contours use their own.
func (v *voiceGraph) triggerRelease(release, now float64) {
	scheduleAmpRelease(v.ampParam, release, now)
	for _, sr := range v.subReleases {
		rel := sr.release
		if release < rel {
			rel = release
		}
		switch sr.kind {
		case subReleaseFilter:
			scheduleFilterRelease(sr.param, sr.base, rel, now)
		case subReleasePitch:
			schedulePitchRelease(sr.param, rel, now)
		default:
			scheduleAmpRelease(sr.param, rel, now)
		}
	}
}
