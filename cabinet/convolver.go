// Package cabinet renders the pedal into a speaker cabinet: a streaming
// partitioned convolver plus a small modal synthesizer for cabinet impulse
// responses when no measured IR is at hand.
package cabinet

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
)

const partSize = 128

// Convolver applies a mono cabinet IR to one channel, block by block.
type Convolver struct {
	sampleRate int
	irLen      int
	mix        float32

	ola *dspconv.StreamingOverlapAddT[float32, complex64]

	in  []float32
	out []float32
}

// NewConvolver returns a convolver with an identity IR and full wet mix.
func NewConvolver(sampleRate int) *Convolver {
	c := &Convolver{
		sampleRate: sampleRate,
		mix:        1,
		in:         make([]float32, partSize),
		out:        make([]float32, partSize),
	}
	if err := c.SetIR([]float32{1}); err != nil {
		panic(err)
	}
	return c
}

// SetIR replaces the impulse response. An empty IR means identity.
func (c *Convolver) SetIR(ir []float32) error {
	if len(ir) == 0 {
		ir = []float32{1}
	}
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, partSize)
	if err != nil {
		return fmt.Errorf("cabinet ir: %w", err)
	}
	c.ola = ola
	c.irLen = len(ir)
	return nil
}

// SetIRFromWAV loads an IR file, mixing it down to mono and resampling it
// to the convolver rate.
func (c *Convolver) SetIRFromWAV(path string) error {
	ir, sr, err := fitcommon.ReadWAVMono(path)
	if err != nil {
		return err
	}
	if len(ir) == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}
	ir, err = fitcommon.ResampleIfNeeded(ir, sr, c.sampleRate)
	if err != nil {
		return err
	}
	return c.SetIR(fitcommon.ToFloat32(ir))
}

// SetMix sets the wet/dry balance, clamped to [0,1].
func (c *Convolver) SetMix(mix float64) {
	c.mix = float32(fitcommon.Clamp(mix, 0, 1))
}

// IRLen reports the length of the active IR in samples.
func (c *Convolver) IRLen() int { return c.irLen }

// Reset clears convolver history.
func (c *Convolver) Reset() {
	c.ola.Reset()
}

// Process convolves buf in place. Blocks shorter than 128 samples are zero
// padded, so only the last block of a stream should be short.
func (c *Convolver) Process(buf []float32) error {
	for start := 0; start < len(buf); start += partSize {
		end := min(start+partSize, len(buf))
		n := copy(c.in, buf[start:end])
		clear(c.in[n:])
		if err := c.ola.ProcessBlockTo(c.out, c.in); err != nil {
			return err
		}
		dry := 1 - c.mix
		for i := 0; i < n; i++ {
			buf[start+i] = dry*buf[start+i] + c.mix*c.out[i]
		}
	}
	return nil
}
