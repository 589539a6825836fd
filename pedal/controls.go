package pedal

import (
	"fmt"
	"math"
	"sync/atomic"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-mammoth/mammoth"
)

// Control names accepted by Controls.Set and Controls.Get.
const (
	ControlEQ     = "eq"
	ControlWool   = "wool"
	ControlPinch  = "pinch"
	ControlOutput = "output"
)

// ControlNames lists the continuous controls in host parameter order.
var ControlNames = []string{ControlEQ, ControlWool, ControlPinch, ControlOutput}

// Controls is the host-visible parameter store. Every slot is a single
// atomic word so a UI goroutine can write while the audio goroutine reads.
type Controls struct {
	eq      atomic.Uint64
	wool    atomic.Uint64
	pinch   atomic.Uint64
	output  atomic.Uint64
	bypass  atomic.Bool
	program atomic.Int32

	// version is bumped on every write so readers can skip unchanged snapshots.
	version atomic.Uint64
}

// NewControls returns a store holding the host defaults.
func NewControls() *Controls {
	c := &Controls{}
	c.SetParams(*mammoth.NewDefaultParams())
	return c
}

func (c *Controls) slot(name string) (*atomic.Uint64, error) {
	switch name {
	case ControlEQ:
		return &c.eq, nil
	case ControlWool:
		return &c.wool, nil
	case ControlPinch:
		return &c.pinch, nil
	case ControlOutput:
		return &c.output, nil
	}
	return nil, fmt.Errorf("unknown control %q", name)
}

// Set stores v, clamped to [0,1], in the named control.
func (c *Controls) Set(name string, v float64) error {
	s, err := c.slot(name)
	if err != nil {
		return err
	}
	s.Store(math.Float64bits(unit(v)))
	c.version.Add(1)
	return nil
}

// Get returns the current value of the named control.
func (c *Controls) Get(name string) (float64, error) {
	s, err := c.slot(name)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(s.Load()), nil
}

// Params returns a snapshot of the four continuous controls.
func (c *Controls) Params() mammoth.Params {
	return mammoth.Params{
		Wool:   math.Float64frombits(c.wool.Load()),
		Pinch:  math.Float64frombits(c.pinch.Load()),
		EQ:     math.Float64frombits(c.eq.Load()),
		Output: math.Float64frombits(c.output.Load()),
	}
}

// SetParams stores all four continuous controls.
func (c *Controls) SetParams(p mammoth.Params) {
	p = p.Clamped()
	c.wool.Store(math.Float64bits(p.Wool))
	c.pinch.Store(math.Float64bits(p.Pinch))
	c.eq.Store(math.Float64bits(p.EQ))
	c.output.Store(math.Float64bits(p.Output))
	c.version.Add(1)
}

// Bypass reports whether the pedal passes input through unchanged.
func (c *Controls) Bypass() bool { return c.bypass.Load() }

// SetBypass switches the true-bypass path on or off.
func (c *Controls) SetBypass(b bool) { c.bypass.Store(b) }

// Program returns the last selected program index.
func (c *Controls) Program() int { return int(c.program.Load()) }

// SetProgram records the program index without touching the controls.
// Indexes outside the factory table are ignored.
func (c *Controls) SetProgram(i int) {
	if i < 0 || i >= mammoth.PresetCount() {
		return
	}
	c.program.Store(int32(i))
}

// Version changes whenever a continuous control is written.
func (c *Controls) Version() uint64 { return c.version.Load() }

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return dspcore.Clamp(v, 0, 1)
}
