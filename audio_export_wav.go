// audio_export_wav.go - WAV export of rendered buffers

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes an interleaved stereo float32 buffer as a 16-bit PCM
// WAV file at the engine sample rate. Samples are clamped, not dithered.
func WriteWAV(path string, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, SampleRate, 16, NumOutputChannels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: NumOutputChannels, SampleRate: SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		v := int(clampUnit(float64(s)) * 32767)
		buf.Data[i] = v
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
