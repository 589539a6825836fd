// Package pedal hosts one mammoth engine per channel behind a
// thread-safe control store, with bypass, program selection and state
// save/restore.
package pedal

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mammoth/mammoth"
)

// ErrInvalidPreset is returned for a program index outside the factory table.
var ErrInvalidPreset = errors.New("invalid preset index")

// Pedal processes multichannel blocks. ProcessBlock must be called from a
// single goroutine; Controls may be written from any goroutine.
type Pedal struct {
	controls *Controls
	engines  []*mammoth.Engine

	sampleRate float64
	applied    uint64
	hasApplied bool
}

// New returns a pedal with one engine per channel at 44.1 kHz.
// Call Prepare before processing at a different rate.
func New(channels int) *Pedal {
	if channels < 1 {
		channels = 1
	}
	p := &Pedal{
		controls:   NewControls(),
		engines:    make([]*mammoth.Engine, channels),
		sampleRate: 44100,
	}
	for i := range p.engines {
		p.engines[i] = mammoth.NewEngine(p.sampleRate)
	}
	p.pushParams()
	return p
}

// Controls returns the shared parameter store.
func (p *Pedal) Controls() *Controls { return p.controls }

// Channels returns the number of engines.
func (p *Pedal) Channels() int { return len(p.engines) }

// SampleRate returns the rate given to the last Prepare.
func (p *Pedal) SampleRate() float64 { return p.sampleRate }

// Engine returns the engine for channel ch.
func (p *Pedal) Engine(ch int) *mammoth.Engine { return p.engines[ch] }

// Prepare configures every engine for sampleRate and applies the current controls.
func (p *Pedal) Prepare(sampleRate float64) {
	p.sampleRate = sampleRate
	for _, e := range p.engines {
		e.Configure(sampleRate)
	}
	p.hasApplied = false
	p.pushParams()
}

// Reset clears all engine state without changing parameters.
func (p *Pedal) Reset() {
	for _, e := range p.engines {
		e.Reset()
	}
}

func (p *Pedal) pushParams() {
	v := p.controls.Version()
	if p.hasApplied && v == p.applied {
		return
	}
	params := p.controls.Params()
	for _, e := range p.engines {
		e.SetParameters(params)
	}
	p.applied = v
	p.hasApplied = true
}

// ProcessBlock processes buf in place, one slice per channel. Slices
// beyond the engine count are cleared. When bypassed buf is left as is.
func (p *Pedal) ProcessBlock(buf [][]float32) {
	if p.controls.Bypass() {
		return
	}
	p.pushParams()
	for ch, data := range buf {
		if ch >= len(p.engines) {
			clear(data)
			continue
		}
		p.engines[ch].ProcessBlock32(data)
	}
}

// ProcessBlock64 is ProcessBlock for float64 buffers.
func (p *Pedal) ProcessBlock64(buf [][]float64) {
	if p.controls.Bypass() {
		return
	}
	p.pushParams()
	for ch, data := range buf {
		if ch >= len(p.engines) {
			clear(data)
			continue
		}
		p.engines[ch].ProcessBlock(data)
	}
}

// LoadPreset copies factory preset i into the controls and records it as
// the current program.
func (p *Pedal) LoadPreset(i int) error {
	preset, ok := mammoth.PresetAt(i)
	if !ok {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidPreset, i, mammoth.PresetCount())
	}
	p.controls.SetParams(preset.Params())
	p.controls.SetProgram(i)
	return nil
}

// PresetName returns the name of factory preset i, or "" if out of range.
func (p *Pedal) PresetName(i int) string {
	preset, ok := mammoth.PresetAt(i)
	if !ok {
		return ""
	}
	return preset.Name
}

// Presets returns the factory preset names in program order.
func (p *Pedal) Presets() []string {
	list := mammoth.FactoryPresets()
	names := make([]string, len(list))
	for i, preset := range list {
		names[i] = preset.Name
	}
	return names
}
