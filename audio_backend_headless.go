//go:build headless

// audio_backend_headless.go - No-op playback backend for CI and servers

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

// OtoOutput (headless build) discards audio. The engine can still be
// driven through RenderBlock directly.
type OtoOutput struct {
	engine  *Engine
	started bool
}

func NewOtoOutput(engine *Engine) (*OtoOutput, error) {
	return &OtoOutput{engine: engine}, nil
}

func (o *OtoOutput) SetEngine(engine *Engine) {
	o.engine = engine
}

func (o *OtoOutput) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (o *OtoOutput) Start() error {
	o.started = true
	return nil
}

func (o *OtoOutput) Stop() error {
	o.started = false
	return nil
}

func (o *OtoOutput) Close() error {
	o.started = false
	return nil
}

func (o *OtoOutput) IsStarted() bool {
	return o.started
}
