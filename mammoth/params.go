package mammoth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Params holds the four pedal controls, each normalized to [0,1].
type Params struct {
	// Wool sets the bass roll-off ahead of the fuzz stage (bass character).
	Wool float64
	// Pinch starves the Q2 bias; higher values gate harder.
	Pinch float64
	// EQ blends the passive tone stack from dark (0) to bright (1).
	EQ float64
	// Output is the final volume.
	Output float64
}

// Host defaults for a freshly instantiated pedal.
const (
	DefaultWool   = 0.5
	DefaultPinch  = 0.3
	DefaultEQ     = 0.5
	DefaultOutput = 0.5
)

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Wool:   DefaultWool,
		Pinch:  DefaultPinch,
		EQ:     DefaultEQ,
		Output: DefaultOutput,
	}
}

// Clamped returns a copy with every control limited to [0,1].
func (p Params) Clamped() Params {
	return Params{
		Wool:   clamp01(p.Wool),
		Pinch:  clamp01(p.Pinch),
		EQ:     clamp01(p.EQ),
		Output: clamp01(p.Output),
	}
}

// WoolCutoffHz maps the Wool control to the bass roll-off cutoff (50..350 Hz).
func WoolCutoffHz(wool float64) float64 {
	return 50.0 + clamp01(wool)*300.0
}

// EQCutoffHz maps the EQ control to the tone stack cutoff (800..3000 Hz).
func EQCutoffHz(eq float64) float64 {
	return 800.0 + clamp01(eq)*2200.0
}

// PinchBias maps the Pinch control to the Q2 bias level (0.15..0.8).
// The floor of 0.15 keeps full pinch from muting the stage outright.
func PinchBias(pinch float64) float64 {
	return 0.15 + (1.0-clamp01(pinch))*0.65
}

// OutputGainFor maps the Output control to a linear gain (0.2..3.2).
func OutputGainFor(output float64) float64 {
	return 0.2 + clamp01(output)*3.0
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return dspcore.Clamp(v, 0, 1)
}
