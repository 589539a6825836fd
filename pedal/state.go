package pedal

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-mammoth/mammoth"
)

const (
	stateBypass  = "bypass"
	stateProgram = "program"
)

// SaveState writes the controls, bypass flag and program index as a flat
// JSON object of numbers.
func (p *Pedal) SaveState(w io.Writer) error {
	state := make(map[string]float64, len(ControlNames)+2)
	for _, name := range ControlNames {
		v, _ := p.controls.Get(name)
		state[name] = v
	}
	state[stateBypass] = 0
	if p.controls.Bypass() {
		state[stateBypass] = 1
	}
	state[stateProgram] = float64(p.controls.Program())

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode pedal state: %w", err)
	}
	return nil
}

// LoadState restores a blob written by SaveState. Unknown keys are ignored
// and missing keys keep their current value. The program index is restored
// without re-applying the preset. The blob is checked in full before
// anything is written, so a failed restore leaves the controls untouched.
func (p *Pedal) LoadState(r io.Reader) error {
	var state map[string]any
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("decode pedal state: %w", err)
	}

	knobs := make(map[string]float64, len(ControlNames))
	for _, name := range ControlNames {
		raw, ok := state[name]
		if !ok {
			continue
		}
		v, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("pedal state %q: expected number, got %T", name, raw)
		}
		knobs[name] = v
	}

	var bypass *bool
	if raw, ok := state[stateBypass]; ok {
		var b bool
		switch v := raw.(type) {
		case bool:
			b = v
		case float64:
			b = v >= 0.5
		default:
			return fmt.Errorf("pedal state %q: expected number, got %T", stateBypass, raw)
		}
		bypass = &b
	}

	program := -1
	if raw, ok := state[stateProgram]; ok {
		v, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("pedal state %q: expected number, got %T", stateProgram, raw)
		}
		if v != math.Trunc(v) || v < 0 || v >= float64(mammoth.PresetCount()) {
			return fmt.Errorf("pedal state %q: %w: %g (have %d)", stateProgram, ErrInvalidPreset, v, mammoth.PresetCount())
		}
		program = int(v)
	}

	for name, v := range knobs {
		if err := p.controls.Set(name, v); err != nil {
			return err
		}
	}
	if bypass != nil {
		p.controls.SetBypass(*bypass)
	}
	if program >= 0 {
		p.controls.SetProgram(program)
	}
	return nil
}
