package dsp

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

func TestBiquadImpulseFollowsCoefficients(t *testing.T) {
	c := biquad.Coefficients{B0: 0.5, B1: 0.25, B2: 0.125, A1: -0.5, A2: 0.1}
	b := NewBiquad(c)
	if b.Coefficients() != c {
		t.Fatalf("coefficients: got %+v want %+v", b.Coefficients(), c)
	}

	y0 := b.Process(1)
	y1 := b.Process(0)
	y2 := b.Process(0)
	want1 := c.B1 - c.A1*y0
	want2 := c.B2 - c.A1*y1 - c.A2*y0
	if y0 != c.B0 || math.Abs(y1-want1) > 1e-12 || math.Abs(y2-want2) > 1e-12 {
		t.Fatalf("impulse: got %g %g %g want %g %g %g", y0, y1, y2, c.B0, want1, want2)
	}
	if got := b.State(); got != [4]float64{0, 0, y2, y1} {
		t.Fatalf("history: got %v", got)
	}
}

func TestBiquadReset(t *testing.T) {
	b := NewLowpass(1000, 48000, math.Sqrt2/2)
	for range 64 {
		b.Process(1)
	}
	b.Reset()
	if b.State() != [4]float64{} {
		t.Fatalf("history not cleared: %v", b.State())
	}
	if y := b.Process(0); y != 0 {
		t.Fatalf("silence after reset gave %g", y)
	}
}

func TestLowpassPassesDC(t *testing.T) {
	b := NewLowpass(1000, 48000, math.Sqrt2/2)
	var y float64
	for range 4800 {
		y = b.Process(1)
	}
	if math.Abs(y-1) > 1e-6 {
		t.Fatalf("DC gain: got %g want 1", y)
	}
}

func TestSetCoefficientsKeepsHistory(t *testing.T) {
	b := NewLowpass(1000, 48000, math.Sqrt2/2)
	b.Process(1)
	before := b.State()
	b.SetCoefficients(biquad.Coefficients{B0: 1})
	if b.State() != before {
		t.Fatalf("history changed: %v -> %v", before, b.State())
	}
}
