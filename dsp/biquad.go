package dsp

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// Biquad is a Direct Form I second-order section. Process does not allocate.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewBiquad returns a section with cleared history running c.
func NewBiquad(c biquad.Coefficients) *Biquad {
	b := &Biquad{}
	b.SetCoefficients(c)
	return b
}

// NewLowpass creates a lowpass biquad at cutoff Hz with quality factor q.
func NewLowpass(cutoff, sampleRate, q float64) *Biquad {
	return NewBiquad(design.Lowpass(cutoff, q, sampleRate))
}

// SetCoefficients replaces the coefficients and keeps the history.
func (b *Biquad) SetCoefficients(c biquad.Coefficients) {
	b.b0, b.b1, b.b2 = c.B0, c.B1, c.B2
	b.a1, b.a2 = c.A1, c.A2
}

// Coefficients returns the current coefficients.
func (b *Biquad) Coefficients() biquad.Coefficients {
	return biquad.Coefficients{B0: b.b0, B1: b.b1, B2: b.b2, A1: b.a1, A2: b.a2}
}

// Process filters one sample.
func (b *Biquad) Process(input float64) float64 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = dspcore.FlushDenormals(output)

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset zeroes the input and output history.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// State returns the history as [x1, x2, y1, y2].
func (b *Biquad) State() [4]float64 {
	return [4]float64{b.x1, b.x2, b.y1, b.y2}
}
