package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/mammoth"
)

type toneSettings struct {
	hz         float64
	amp        float64
	duration   float64
	sampleRate float64
}

type toneReport struct {
	Params    mammoth.Params          `json:"params"`
	Harmonics analysis.HarmonicReport `json:"harmonics"`
	Bands     []analysis.BandLevel    `json:"bands"`
	Loudness  analysis.Loudness       `json:"loudness"`
	GateLevel float64                 `json:"gate_level"`
}

// analyzeTone renders a sine through a fresh engine and measures the
// steady-state part of the output.
func analyzeTone(params mammoth.Params, tone toneSettings) (toneReport, error) {
	n := int(tone.duration * tone.sampleRate)
	if n < 4096 {
		return toneReport{}, fmt.Errorf("duration %.3fs too short for analysis", tone.duration)
	}
	gen := signal.NewGenerator(core.WithSampleRate(tone.sampleRate))
	in, err := gen.Sine(tone.hz, tone.amp, n)
	if err != nil {
		return toneReport{}, err
	}

	e := mammoth.NewEngine(tone.sampleRate)
	e.SetParameters(params)
	e.ProcessBlock(in)
	steady := in[n/4:]

	return toneReport{
		Params:    e.Params(),
		Harmonics: analysis.Harmonics(steady, tone.sampleRate, tone.hz),
		Bands:     analysis.BandLevels(steady, tone.sampleRate, analysis.DefaultBands),
		Loudness:  analysis.MeasureLoudness(in, tone.sampleRate),
		GateLevel: e.GateLevel(),
	}, nil
}

func sweepKnob(base mammoth.Params, knob string, steps int, tone toneSettings) ([]toneReport, error) {
	if steps < 2 {
		steps = 2
	}
	out := make([]toneReport, 0, steps)
	for i := 0; i < steps; i++ {
		p := base
		v := float64(i) / float64(steps-1)
		if err := setKnob(&p, knob, v); err != nil {
			return nil, err
		}
		r, err := analyzeTone(p, tone)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func setKnob(p *mammoth.Params, name string, v float64) error {
	v = math.Max(0, math.Min(1, v))
	switch name {
	case "wool":
		p.Wool = v
	case "pinch":
		p.Pinch = v
	case "eq":
		p.EQ = v
	case "output":
		p.Output = v
	default:
		return fmt.Errorf("unknown knob %q (valid: wool, pinch, eq, output)", name)
	}
	return nil
}
