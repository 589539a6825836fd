package main

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/mammoth"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

var allKnobs = []string{"wool", "pinch", "eq", "output"}

// parseKnobs parses a comma-separated list of knob names to fit.
func parseKnobs(raw string) ([]knobDef, error) {
	valid := make(map[string]bool, len(allKnobs))
	for _, k := range allKnobs {
		valid[k] = true
	}
	seen := make(map[string]bool)
	var defs []knobDef
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown knob %q (valid: %s)", s, strings.Join(allKnobs, ", "))
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		defs = append(defs, knobDef{Name: s, Min: 0, Max: 1})
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no knobs specified")
	}
	return defs, nil
}

func knobValue(p mammoth.Params, name string) float64 {
	switch name {
	case "wool":
		return p.Wool
	case "pinch":
		return p.Pinch
	case "eq":
		return p.EQ
	case "output":
		return p.Output
	}
	return 0
}

func setKnob(p *mammoth.Params, name string, v float64) {
	switch name {
	case "wool":
		p.Wool = v
	case "pinch":
		p.Pinch = v
	case "eq":
		p.EQ = v
	case "output":
		p.Output = v
	}
}

func initCandidate(base mammoth.Params, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		vals[i] = clamp(knobValue(base, d.Name), d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

// applyCandidate returns base with the fitted knobs replaced.
func applyCandidate(base mammoth.Params, defs []knobDef, cand candidate) mammoth.Params {
	p := base
	for i, d := range defs {
		setKnob(&p, d.Name, clamp(cand.Vals[i], d.Min, d.Max))
	}
	return p
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func clamp(v, lo, hi float64) float64 {
	return fitcommon.Clamp(v, lo, hi)
}
