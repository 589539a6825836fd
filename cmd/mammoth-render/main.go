package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/algo-mammoth/pedal"
	"github.com/cwbudde/algo-mammoth/preset"
)

func main() {
	input := flag.String("input", "", "Input WAV file (mono or stereo). If empty a test tone is rendered")
	toneHz := flag.Float64("tone-hz", 82.41, "Test tone frequency in Hz when -input is empty")
	toneAmp := flag.Float64("tone-amp", 0.5, "Test tone amplitude when -input is empty")
	duration := flag.Float64("duration", 2.0, "Test tone duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz (input is resampled if needed)")
	presetIndex := flag.Int("preset", -1, "Factory preset index (-1 = host defaults)")
	presetPath := flag.String("preset-file", "", "User preset JSON file (applied after -preset)")
	wool := flag.Float64("wool", -1, "Wool override in [0,1] (<0 keeps preset value)")
	pinch := flag.Float64("pinch", -1, "Pinch override in [0,1] (<0 keeps preset value)")
	eq := flag.Float64("eq", -1, "EQ override in [0,1] (<0 keeps preset value)")
	outputLevel := flag.Float64("output-level", -1, "Output level override in [0,1] (<0 keeps preset value)")
	bypass := flag.Bool("bypass", false, "Pass the input through untouched")
	listPresets := flag.Bool("list-presets", false, "Print the factory presets and exit")
	output := flag.String("output", "output.wav", "Output WAV file path")
	cabIR := flag.String("cab-ir", "", "Cabinet IR WAV applied after the pedal, or \"synth\" for a generated speaker IR")
	cabMix := flag.Float64("cab-mix", 1.0, "Cabinet wet/dry mix in [0,1]")
	cabSeed := flag.Int64("cab-seed", 1, "Seed for -cab-ir synth")
	cabOut := flag.String("write-cab-ir", "", "Also write the synthesized cabinet IR to this WAV path")
	flag.Parse()

	if *listPresets {
		printPresets()
		return
	}

	chans, err := loadInput(*input, *sampleRate, *toneHz, *toneAmp, *duration)
	if err != nil {
		die("input: %v", err)
	}

	p := pedal.New(len(chans))
	p.Prepare(float64(*sampleRate))
	if *presetIndex >= 0 {
		if err := p.LoadPreset(*presetIndex); err != nil {
			die("preset: %v", err)
		}
	}
	if *presetPath != "" {
		user, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("loading preset %q: %v", *presetPath, err)
		}
		p.Controls().SetParams(user.Params())
	}
	overrides := map[string]float64{
		pedal.ControlWool:   *wool,
		pedal.ControlPinch:  *pinch,
		pedal.ControlEQ:     *eq,
		pedal.ControlOutput: *outputLevel,
	}
	for name, v := range overrides {
		if v < 0 {
			continue
		}
		if err := p.Controls().Set(name, v); err != nil {
			die("%v", err)
		}
	}
	p.Controls().SetBypass(*bypass)

	params := p.Controls().Params()
	fmt.Printf("Rendering %d channel(s), %.2fs at %d Hz (wool=%.2f pinch=%.2f eq=%.2f output=%.2f bypass=%v)...\n",
		len(chans), float64(len(chans[0]))/float64(*sampleRate), *sampleRate,
		params.Wool, params.Pinch, params.EQ, params.Output, *bypass)

	out := render(p, chans, renderBlockSize)

	if *cabIR != "" {
		conv, synthIR, err := newCabinet(*cabIR, *sampleRate, *cabSeed, *cabMix)
		if err != nil {
			die("cabinet: %v", err)
		}
		if *cabOut != "" && synthIR != nil {
			if err := fitcommon.WriteMonoWAV(*cabOut, synthIR, *sampleRate); err != nil {
				die("writing %q: %v", *cabOut, err)
			}
		}
		if err := applyCabinet(conv, out); err != nil {
			die("cabinet: %v", err)
		}
		fmt.Printf("Applied cabinet IR (%d samples, mix %.2f)\n", conv.IRLen(), *cabMix)
	}

	if err := fitcommon.WriteWAV(*output, out, *sampleRate); err != nil {
		die("writing %q: %v", *output, err)
	}

	mono := make([]float64, len(out[0]))
	for c := range out {
		for i, v := range out[c] {
			mono[i] += float64(v) / float64(len(out))
		}
	}
	l := analysis.MeasureLoudness(mono, float64(*sampleRate))
	fmt.Printf("Wrote %s (integrated %.1f LUFS, peak %.1f dBFS)\n", *output, l.IntegratedLUFS, l.PeakDBFS)
}

func printPresets() {
	for i, p := range mammoth.FactoryPresets() {
		fmt.Printf("%2d  %-16s wool=%.2f pinch=%.2f eq=%.2f output=%.2f  %s\n",
			i, p.Name, p.Wool, p.Pinch, p.EQ, p.Output, p.Description)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
