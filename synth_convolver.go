// synth_convolver.go - Partitioned FFT convolution for the reverb stage

/*
DrumForge - drum voice synthesis engine

(c) 2025 - 2026 The DrumForge Authors
https://github.com/drumforge/drumforge
License: GPLv3 or later
*/

package drumforge

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// convolverNode convolves its input against a stereo impulse response
// using a uniformly partitioned frequency-domain delay line (overlap-save,
// 50% overlap, block size ConvolverBlock). Per-block cost is one forward
// FFT, one complex multiply-accumulate per partition and one inverse FFT,
// which keeps multi-second impulse responses affordable in the real-time
// pull path. Output is delayed by one block (ConvolverBlock samples);
// for a reverb tail the offset is inaudible.
type convolverNode struct {
	baseNode
	inputList

	fft   *fourier.FFT
	block int

	parts [2][][]complex128 // per-channel partition spectra
	fdl   [][]complex128    // ring of input block spectra, newest first
	fdlAt int

	inBuf   []float64 // sliding 2*block window of (mono) input
	curIn   []float64
	outBuf  [2][]float64
	acc     []complex128
	scratch []float64
	pos     int
}

// newConvolver builds a convolver for the given stereo impulse response.
// Both IR channels must be the same length; an empty IR passes silence.
func newConvolver(g *Graph, irL, irR []float64) *convolverNode {
	b := ConvolverBlock
	n := 2 * b
	c := &convolverNode{
		baseNode: newBaseNode(g),
		fft:      fourier.NewFFT(n),
		block:    b,
		inBuf:    make([]float64, n),
		curIn:    make([]float64, b),
		acc:      make([]complex128, b+1),
		scratch:  make([]float64, n),
	}
	c.outBuf[0] = make([]float64, b)
	c.outBuf[1] = make([]float64, b)

	irLen := len(irL)
	if len(irR) > irLen {
		irLen = len(irR)
	}
	numParts := (irLen + b - 1) / b
	if numParts == 0 {
		numParts = 1
	}
	seq := make([]float64, n)
	for ch, ir := range [2][]float64{irL, irR} {
		c.parts[ch] = make([][]complex128, numParts)
		for p := 0; p < numParts; p++ {
			for i := 0; i < b; i++ {
				idx := p*b + i
				if idx < len(ir) {
					seq[i] = ir[idx]
				} else {
					seq[i] = 0
				}
			}
			for i := b; i < n; i++ {
				seq[i] = 0
			}
			c.parts[ch][p] = c.fft.Coefficients(nil, seq)
		}
	}
	c.fdl = make([][]complex128, numParts)
	for i := range c.fdl {
		c.fdl[i] = make([]complex128, b+1)
	}
	return c
}

func (c *convolverNode) sample(frame int64) (float64, float64) {
	if c.last == frame {
		return c.outL, c.outR
	}
	inL, inR := c.sum(frame)
	mono := (inL + inR) * 0.5

	l := c.outBuf[0][c.pos]
	r := c.outBuf[1][c.pos]
	c.curIn[c.pos] = mono
	c.pos++
	if c.pos == c.block {
		c.processBlock()
		c.pos = 0
	}

	c.last = frame
	c.outL, c.outR = l, r
	return l, r
}

func (c *convolverNode) processBlock() {
	b := c.block
	n := 2 * b

	// Slide the input window and take its spectrum.
	copy(c.inBuf[:b], c.inBuf[b:])
	copy(c.inBuf[b:], c.curIn)
	c.fdlAt--
	if c.fdlAt < 0 {
		c.fdlAt = len(c.fdl) - 1
	}
	c.fft.Coefficients(c.fdl[c.fdlAt], c.inBuf)

	// Multiply-accumulate against each partition, per channel.
	for ch := 0; ch < 2; ch++ {
		for i := range c.acc {
			c.acc[i] = 0
		}
		for p, h := range c.parts[ch] {
			x := c.fdl[(c.fdlAt+p)%len(c.fdl)]
			for i := range c.acc {
				c.acc[i] += x[i] * h[i]
			}
		}
		c.fft.Sequence(c.scratch, c.acc)
		inv := 1 / float64(n)
		for i := 0; i < b; i++ {
			// Overlap-save: only the second half of the inverse
			// transform is valid output.
			c.outBuf[ch][i] = c.scratch[b+i] * inv
		}
	}
}
