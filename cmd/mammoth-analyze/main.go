package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/algo-mammoth/preset"
)

func main() {
	toneHz := flag.Float64("tone-hz", 110, "Test tone frequency in Hz")
	toneAmp := flag.Float64("tone-amp", 0.5, "Test tone amplitude")
	duration := flag.Float64("duration", 1.0, "Rendered seconds (the first quarter is skipped as settling time)")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	presetIndex := flag.Int("preset", -1, "Factory preset index (-1 = host defaults)")
	presetPath := flag.String("preset-file", "", "User preset JSON file")
	wool := flag.Float64("wool", -1, "Wool override in [0,1] (<0 keeps preset value)")
	pinch := flag.Float64("pinch", -1, "Pinch override in [0,1] (<0 keeps preset value)")
	eq := flag.Float64("eq", -1, "EQ override in [0,1] (<0 keeps preset value)")
	outputLevel := flag.Float64("output-level", -1, "Output level override in [0,1] (<0 keeps preset value)")
	sweep := flag.String("sweep", "", "Sweep one knob from 0 to 1: wool|pinch|eq|output")
	steps := flag.Int("steps", 11, "Number of sweep steps")
	referencePath := flag.String("reference", "", "Compare mode: reference WAV path")
	candidatePath := flag.String("candidate", "", "Compare mode: candidate WAV path")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	flag.Parse()

	if *referencePath != "" || *candidatePath != "" {
		if *referencePath == "" || *candidatePath == "" {
			die("compare mode needs both -reference and -candidate")
		}
		m, err := compareFiles(*referencePath, *candidatePath, *sampleRate)
		if err != nil {
			die("%v", err)
		}
		if *jsonOut {
			printJSON(m)
			return
		}
		printMetrics(m)
		return
	}

	params, err := resolveParams(*presetIndex, *presetPath)
	if err != nil {
		die("%v", err)
	}
	overrides := []struct {
		name string
		v    float64
	}{{"wool", *wool}, {"pinch", *pinch}, {"eq", *eq}, {"output", *outputLevel}}
	for _, o := range overrides {
		if o.v >= 0 {
			if err := setKnob(&params, o.name, o.v); err != nil {
				die("%v", err)
			}
		}
	}

	tone := toneSettings{
		hz:         *toneHz,
		amp:        *toneAmp,
		duration:   *duration,
		sampleRate: float64(*sampleRate),
	}

	var reports []toneReport
	if *sweep != "" {
		reports, err = sweepKnob(params, *sweep, *steps, tone)
		if err != nil {
			die("%v", err)
		}
	} else {
		r, err := analyzeTone(params, tone)
		if err != nil {
			die("%v", err)
		}
		reports = []toneReport{r}
	}

	if *jsonOut {
		printJSON(reports)
		return
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Println()
		}
		printReport(r)
	}
}

func resolveParams(index int, path string) (mammoth.Params, error) {
	params := *mammoth.NewDefaultParams()
	if index >= 0 {
		p, ok := mammoth.PresetAt(index)
		if !ok {
			return params, fmt.Errorf("preset index %d out of range (have %d)", index, mammoth.PresetCount())
		}
		params = p.Params()
	}
	if path != "" {
		p, err := preset.LoadJSON(path)
		if err != nil {
			return params, fmt.Errorf("loading preset %q: %w", path, err)
		}
		params = p.Params()
	}
	return params, nil
}

func compareFiles(referencePath, candidatePath string, sampleRate int) (analysis.Metrics, error) {
	read := func(path string) ([]float64, error) {
		raw, sr, err := fitcommon.ReadWAVMono(path)
		if err != nil {
			return nil, err
		}
		return fitcommon.ResampleIfNeeded(raw, sr, sampleRate)
	}
	ref, err := read(referencePath)
	if err != nil {
		return analysis.Metrics{}, fmt.Errorf("failed to read reference: %w", err)
	}
	cand, err := read(candidatePath)
	if err != nil {
		return analysis.Metrics{}, fmt.Errorf("failed to read candidate: %w", err)
	}
	return analysis.Compare(ref, cand, sampleRate), nil
}

func printReport(r toneReport) {
	p := r.Params
	fmt.Printf("Knobs: wool=%.2f pinch=%.2f eq=%.2f output=%.2f\n", p.Wool, p.Pinch, p.EQ, p.Output)
	fmt.Printf("Derived: bass cutoff %.0f Hz, tone cutoff %.0f Hz, bias %.3f, gain %.2f\n",
		mammoth.WoolCutoffHz(p.Wool), mammoth.EQCutoffHz(p.EQ), mammoth.PinchBias(p.Pinch), mammoth.OutputGainFor(p.Output))
	h := r.Harmonics
	fmt.Printf("THD:      %.2f%% (%.1f dB)\n", h.THD*100, h.THDDB)
	fmt.Printf("THD+N:    %.2f%% (%.1f dB)\n", h.THDN*100, h.THDNDB)
	fmt.Printf("Odd/Even: %.4f / %.4f (even/odd %.3f)\n", h.Odd, h.Even, h.EvenOddRatio)
	fmt.Printf("Level:    %.1f LUFS, peak %.1f dBFS, gate %.3f\n", r.Loudness.IntegratedLUFS, r.Loudness.PeakDBFS, r.GateLevel)
	for _, b := range r.Bands {
		fmt.Printf("  %-9s %6.0f-%-6.0f Hz %7.1f dB\n", b.Name, b.Low, b.High, b.DB)
	}
}

func printMetrics(m analysis.Metrics) {
	fmt.Printf("Reference frames: %d\n", m.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", m.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", m.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", m.LagSamples, 1000.0*float64(m.LagSamples)/float64(m.SampleRate))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		marker := ""
		if dominant {
			marker = " <"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  x%.2f   -> %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", m.TimeRMSE), m.TimeNorm, analysis.WeightTime, m.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", m.EnvelopeRMSEDB), m.EnvelopeNorm, analysis.WeightEnvelope, m.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", m.SpectralRMSEDB), m.SpectralNorm, analysis.WeightSpectral, m.Dominant == "spectral")
	printComp("Crest diff", fmt.Sprintf("%.1f dB", m.CrestDiffDB), m.CrestNorm, analysis.WeightCrest, m.Dominant == "crest")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", m.Score)
	fmt.Printf("Similarity:       %.2f%%\n", m.Similarity*100.0)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		die("json encode failed: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
