//go:build !headless

// audio_backend_oto.go - OTO v3 playback backend

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput drives an Engine through the oto v3 playback context. The
// engine pointer is atomic so the hot Read path never takes the setup
// mutex.
type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	engine    atomic.Pointer[Engine]
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex // setup/control operations only
}

// NewOtoOutput opens the platform audio device for interleaved stereo
// float32 playback at the engine sample rate.
func NewOtoOutput(engine *Engine) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: NumOutputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	o := &OtoOutput{ctx: ctx}
	o.engine.Store(engine)
	o.player = ctx.NewPlayer(o)
	o.sampleBuf = make([]float32, 4096)
	return o, nil
}

// SetEngine swaps the rendering engine without stopping playback.
func (o *OtoOutput) SetEngine(engine *Engine) {
	o.engine.Store(engine)
}

func (o *OtoOutput) Read(p []byte) (n int, err error) {
	engine := o.engine.Load()
	if engine == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4
	numSamples -= numSamples % NumOutputChannels
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]
	engine.RenderBlock(samples)

	copy(p[:numSamples*4], (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:numSamples*4])
	return numSamples * 4, nil
}

func (o *OtoOutput) Start() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
	return nil
}

func (o *OtoOutput) Stop() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.started && o.player != nil {
		o.player.Pause()
		o.started = false
	}
	return nil
}

func (o *OtoOutput) Close() error {
	if err := o.Stop(); err != nil {
		return err
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.player != nil {
		err := o.player.Close()
		o.player = nil
		return err
	}
	return nil
}

func (o *OtoOutput) IsStarted() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.started
}
