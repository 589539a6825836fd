package mammoth

import (
	"math"

	"github.com/cwbudde/algo-mammoth/dsp"
)

const (
	// Anti-alias low-pass, fixed relative to the sample rate.
	antiAliasRatio = 0.4
	antiAliasQ     = 0.707

	dcBlockPole = 0.995

	// Retention of the C1 (220nF), C2 (10nF) and C6 (10nF) coupling caps.
	c1Retention = 0.999
	c2Retention = 0.995
	c6Retention = 0.995
)

// Engine is one mono channel of the pedal. It is not safe for concurrent use;
// each audio channel owns its own Engine.
type Engine struct {
	sampleRate float64
	params     Params

	// Derived from params.
	woolCutoff float64
	eqCutoff   float64
	biasLevel  float64
	outputGain float64

	dc        dsp.DCBlocker
	c1        dsp.Coupler
	c2        dsp.Coupler
	c6        dsp.Coupler
	wool      dsp.OnePole
	eqLow1    dsp.OnePole
	eqLow2    dsp.OnePole
	antiAlias dsp.Biquad

	gate     float64
	gatePole float64
	sag      supplySag

	q1Collector float64
	q2Collector float64
}

// State is a copy of every value an Engine carries from one sample to the next.
type State struct {
	DCIn, DCOut float64

	C1, C2, C6 float64

	Wool     float64
	ToneLow1 float64
	ToneLow2 float64

	// AntiAlias is the biquad history as x1, x2, y1, y2.
	AntiAlias [4]float64

	Gate float64

	SagCurrent float64
	SagDrop    float64
	Supply     float64

	Q1Collector float64
	Q2Collector float64
}

// NewEngine creates an engine configured for sampleRate with default controls.
func NewEngine(sampleRate float64) *Engine {
	e := &Engine{params: *NewDefaultParams()}
	e.Configure(sampleRate)
	return e
}

// Configure recomputes all sample-rate dependent coefficients and resets the
// circuit to its quiescent state. sampleRate must be positive.
func (e *Engine) Configure(sampleRate float64) {
	e.sampleRate = sampleRate
	e.dc = dsp.DCBlocker{R: dcBlockPole}
	e.c1 = dsp.NewCoupler(c1Retention)
	e.c2 = dsp.NewCoupler(c2Retention)
	e.c6 = dsp.NewCoupler(c6Retention)
	e.antiAlias = *dsp.NewLowpass(antiAliasRatio*sampleRate, sampleRate, antiAliasQ)
	e.gatePole = dsp.PoleForTime(gateTime, sampleRate)
	e.sag.configure(sampleRate)
	e.SetParameters(e.params)
	e.Reset()
}

// Reset returns every stage to its quiescent state without touching controls.
func (e *Engine) Reset() {
	e.dc.Reset()
	e.c1.Reset()
	e.c2.Reset()
	e.c6.Reset()
	e.wool.Reset()
	e.eqLow1.Reset()
	e.eqLow2.Reset()
	e.antiAlias.Reset()
	e.gate = 1.0
	e.sag.reset()
	e.q1Collector = 0
	e.q2Collector = 0
}

// SetParameters clamps and applies all four controls. Per-sample state is
// left alone, so this is safe between any two Process calls.
func (e *Engine) SetParameters(p Params) {
	e.params = p.Clamped()
	e.woolCutoff = WoolCutoffHz(e.params.Wool)
	e.eqCutoff = EQCutoffHz(e.params.EQ)
	e.biasLevel = PinchBias(e.params.Pinch)
	e.outputGain = OutputGainFor(e.params.Output)
	if e.sampleRate > 0 {
		e.wool.Pole = dsp.PoleForCutoff(e.woolCutoff, e.sampleRate)
		eqPole := dsp.PoleForCutoff(e.eqCutoff, e.sampleRate)
		e.eqLow1.Pole = eqPole
		e.eqLow2.Pole = eqPole
	}
}

// SetWool sets the bass roll-off control.
func (e *Engine) SetWool(v float64) {
	p := e.params
	p.Wool = v
	e.SetParameters(p)
}

// SetPinch sets the Q2 bias starvation control.
func (e *Engine) SetPinch(v float64) {
	p := e.params
	p.Pinch = v
	e.SetParameters(p)
}

// SetEQ sets the tone control.
func (e *Engine) SetEQ(v float64) {
	p := e.params
	p.EQ = v
	e.SetParameters(p)
}

// SetOutput sets the volume control.
func (e *Engine) SetOutput(v float64) {
	p := e.params
	p.Output = v
	e.SetParameters(p)
}

// Process runs one sample through the full circuit.
func (e *Engine) Process(input float64) float64 {
	if !isFinite(input) {
		input = 0
	}

	x := preDrive(input)
	x = e.dc.Process(x)
	sf := e.sag.step(x)

	x = e.c1.Process(x)
	x = e.transistorQ1(x, sf)
	x = e.wool.Highpass(x)
	x = e.c2.Process(x)
	x = e.transistorQ2(x, sf)
	x = e.c6.Process(x)
	x = e.toneControl(x)
	x = e.antiAlias.Process(x)

	return softLimit(x * e.outputGain * sf)
}

// ProcessBlock processes buf in place.
func (e *Engine) ProcessBlock(buf []float64) {
	for i, s := range buf {
		buf[i] = e.Process(s)
	}
}

// ProcessBlock32 processes a float32 buffer in place.
func (e *Engine) ProcessBlock32(buf []float32) {
	for i, s := range buf {
		buf[i] = float32(e.Process(float64(s)))
	}
}

// SampleRate returns the rate the filters are designed for.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Params returns the controls last passed to SetParameters.
func (e *Engine) Params() Params { return e.params }

// BassCutoff returns the input high-pass corner in Hz set by Wool.
func (e *Engine) BassCutoff() float64 { return e.woolCutoff }

// ToneCutoff returns the tone stack crossover in Hz set by EQ.
func (e *Engine) ToneCutoff() float64 { return e.eqCutoff }

// BiasLevel returns the Q2 bias derived from Pinch.
func (e *Engine) BiasLevel() float64 { return e.biasLevel }

// OutputGain returns the linear output gain derived from Output.
func (e *Engine) OutputGain() float64 { return e.outputGain }

// GateLevel returns the smoothed Q2 activity in (0,1].
func (e *Engine) GateLevel() float64 { return e.gate }

// SupplyVoltage returns the sagged supply voltage in volts.
func (e *Engine) SupplyVoltage() float64 { return e.sag.voltage }

// State returns a snapshot of the per-sample state.
func (e *Engine) State() State {
	dcIn, dcOut := e.dc.State()
	return State{
		DCIn:        dcIn,
		DCOut:       dcOut,
		C1:          e.c1.Voltage(),
		C2:          e.c2.Voltage(),
		C6:          e.c6.Voltage(),
		Wool:        e.wool.Value(),
		ToneLow1:    e.eqLow1.Value(),
		ToneLow2:    e.eqLow2.Value(),
		AntiAlias:   e.antiAlias.State(),
		Gate:        e.gate,
		SagCurrent:  e.sag.current,
		SagDrop:     e.sag.drop,
		Supply:      e.sag.voltage,
		Q1Collector: e.q1Collector,
		Q2Collector: e.q2Collector,
	}
}

// Finite reports whether every state value is finite.
func (s State) Finite() bool {
	vals := [...]float64{
		s.DCIn, s.DCOut, s.C1, s.C2, s.C6, s.Wool, s.ToneLow1, s.ToneLow2,
		s.AntiAlias[0], s.AntiAlias[1], s.AntiAlias[2], s.AntiAlias[3],
		s.Gate, s.SagCurrent, s.SagDrop, s.Supply, s.Q1Collector, s.Q2Collector,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
