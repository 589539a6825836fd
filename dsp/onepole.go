package dsp

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// PoleForCutoff returns the feedback coefficient exp(-2*pi*fc/fs) of a
// one-pole smoother with the given cutoff.
func PoleForCutoff(cutoffHz, sampleRate float64) float64 {
	if sampleRate <= 0 || cutoffHz <= 0 {
		return 0
	}
	p := float64(approx.FastExp(float32(-2 * math.Pi * cutoffHz / sampleRate)))
	if p < 0 {
		return 0
	}
	if p >= 1 {
		return math.Nextafter(1, 0)
	}
	return p
}

// PoleForTime returns the feedback coefficient of a smoother whose time
// constant is seconds. Poles this close to 1 need the exact exponential.
func PoleForTime(seconds, sampleRate float64) float64 {
	if sampleRate <= 0 || seconds <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * sampleRate))
}

// OnePole is an exponential smoother z = z*pole + x*(1-pole).
type OnePole struct {
	Pole float64
	z    float64
}

// Lowpass advances the smoother and returns the smoothed value.
func (o *OnePole) Lowpass(x float64) float64 {
	o.z = dspcore.FlushDenormals(o.z*o.Pole + x*(1-o.Pole))
	return o.z
}

// Highpass returns x minus the smoothed value.
func (o *OnePole) Highpass(x float64) float64 {
	return x - o.Lowpass(x)
}

// Value returns the smoother history.
func (o *OnePole) Value() float64 { return o.z }

// Reset clears the history.
func (o *OnePole) Reset() { o.z = 0 }

// Coupler models a series coupling capacitor as a leaky integrator
// subtracted from its input.
type Coupler struct {
	K       float64
	voltage float64
}

// NewCoupler returns a coupler with retention k (close to 1).
func NewCoupler(k float64) Coupler {
	return Coupler{K: k}
}

// Process passes x through the capacitor.
func (c *Coupler) Process(x float64) float64 {
	c.voltage = dspcore.FlushDenormals(c.voltage*c.K + x*(1-c.K))
	return x - c.voltage
}

// Voltage returns the capacitor voltage.
func (c *Coupler) Voltage() float64 { return c.voltage }

// Reset discharges the capacitor.
func (c *Coupler) Reset() { c.voltage = 0 }

// DCBlocker is the one-pole high-pass y = x - x1 + r*y1.
type DCBlocker struct {
	R      float64
	x1, y1 float64
}

// Process filters one sample.
func (d *DCBlocker) Process(x float64) float64 {
	y := dspcore.FlushDenormals(x - d.x1 + d.R*d.y1)
	d.x1 = x
	d.y1 = y
	return y
}

// State returns the last input and output.
func (d *DCBlocker) State() (float64, float64) { return d.x1, d.y1 }

// Reset clears the history.
func (d *DCBlocker) Reset() { d.x1, d.y1 = 0, 0 }
