//go:build linux && alsa && !headless

// audio_backend_alsa.go - Direct ALSA playback backend (build with -tags alsa)

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

const alsaBlockFrames = 512

// ALSAOutput drives an Engine straight into an ALSA PCM device,
// bypassing oto. A render goroutine pulls one block at a time and lets
// the blocking writei call pace it.
type ALSAOutput struct {
	handle  *C.snd_pcm_t
	engine  *Engine
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
	mutex   sync.Mutex
}

// NewALSAOutput opens the named PCM device ("" means "default") for
// interleaved stereo float playback at the engine sample rate.
func NewALSAOutput(engine *Engine, device string) (*ALSAOutput, error) {
	if device == "" {
		device = "default"
	}
	cdev := C.CString(device)
	defer C.free(unsafe.Pointer(cdev))

	var cerr C.int
	handle := C.openPCM(cdev, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("alsa: open %s: %s", device, C.GoString(C.snd_strerror(cerr)))
	}
	if rc := C.setupPCM(handle, C.uint(SampleRate), C.uint(NumOutputChannels)); rc < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("alsa: configure %s: %s", device, C.GoString(C.snd_strerror(rc)))
	}
	return &ALSAOutput{handle: handle, engine: engine}, nil
}

func (a *ALSAOutput) Start() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.started {
		return nil
	}
	a.started = true
	a.done = make(chan struct{})
	a.wg.Add(1)
	go a.renderLoop(a.done)
	return nil
}

func (a *ALSAOutput) renderLoop(done chan struct{}) {
	defer a.wg.Done()
	buf := make([]float32, alsaBlockFrames*NumOutputChannels)
	for {
		select {
		case <-done:
			return
		default:
		}
		a.engine.RenderBlock(buf)
		rc := C.writePCM(a.handle, (*C.float)(unsafe.Pointer(&buf[0])), C.int(alsaBlockFrames))
		if rc == -C.EPIPE {
			// Underrun: recover and retry the block.
			C.snd_pcm_prepare(a.handle)
			C.writePCM(a.handle, (*C.float)(unsafe.Pointer(&buf[0])), C.int(alsaBlockFrames))
		}
	}
}

func (a *ALSAOutput) Stop() error {
	a.mutex.Lock()
	if !a.started {
		a.mutex.Unlock()
		return nil
	}
	a.started = false
	close(a.done)
	a.mutex.Unlock()
	a.wg.Wait()
	return nil
}

func (a *ALSAOutput) Close() error {
	if err := a.Stop(); err != nil {
		return err
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.handle != nil {
		C.closePCM(a.handle)
		a.handle = nil
	}
	return nil
}
