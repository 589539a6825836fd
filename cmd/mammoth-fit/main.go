package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/algo-mammoth/preset"
)

func main() {
	dryPath := flag.String("dry", "reference/dry.wav", "Dry (unprocessed) input WAV path")
	referencePath := flag.String("reference", "reference/wet.wav", "Reference WAV recorded through the target pedal")
	basePreset := flag.Int("preset", -1, "Factory preset to start from (-1 = host defaults)")
	basePresetFile := flag.String("preset-file", "", "User preset JSON to start from (overrides -preset)")
	knobsFlag := flag.String("knobs", "wool,pinch,eq,output", "Comma-separated knobs to fit: wool, pinch, eq, output")
	outputPreset := flag.String("output-preset", "out/fitted.json", "Path to write best fitted preset JSON")
	presetName := flag.String("name", "Fitted", "Name stored in the fitted preset")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	optDuration := flag.Float64("opt-duration", 3.0, "Seconds of material scored during the search (<=0 uses all)")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	renderBlockSize := flag.Int("render-block-size", 128, "Audio render block size for candidate evaluation")
	refineTopK := flag.Int("refine-top-k", 3, "After optimization, re-evaluate best N candidates on the full material")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	defs, err := parseKnobs(*knobsFlag)
	if err != nil {
		die("invalid --knobs: %v", err)
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	*refineTopK = min(max(*refineTopK, 1), *topK)
	parsedWorkers, err := fitcommon.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}

	base, err := loadBaseParams(*basePreset, *basePresetFile)
	if err != nil {
		die("failed to load base preset: %v", err)
	}

	dry, err := readMono(*dryPath, *sampleRate)
	if err != nil {
		die("failed to read dry input: %v", err)
	}
	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	n := min(len(dry), len(ref))
	if n == 0 {
		die("dry and reference must not be empty")
	}
	dry, ref = dry[:n], ref[:n]
	optN := n
	if *optDuration > 0 {
		optN = min(n, int(*optDuration*float64(*sampleRate)))
	}

	initCand := initCandidate(base, defs)
	reportFile := *reportPath
	if reportFile == "" {
		reportFile = *outputPreset + ".report.json"
	}
	if *resume {
		if resumed, ok, err := loadCandidateFromReport(reportFile, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", reportFile, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", reportFile)
		}
	}

	variant := strings.ToLower(*mayflyVariant)
	info := outputInfo{
		dryPath:       *dryPath,
		referencePath: *referencePath,
		outputPreset:  *outputPreset,
		reportPath:    *reportPath,
		presetName:    *presetName,
		sampleRate:    *sampleRate,
		variant:       variant,
	}

	var checkpointMu sync.Mutex
	bestCheckpoint := 2.0
	cfg := &optimizationConfig{
		dry:              dry[:optN],
		reference:        ref[:optN],
		finalDry:         dry,
		finalReference:   ref,
		sampleRate:       *sampleRate,
		baseParams:       base,
		defs:             defs,
		initCandidate:    initCand,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		renderBlockSize:  *renderBlockSize,
		refineTopK:       *refineTopK,
		mayflyVariant:    variant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          fitcommon.ResolveWorkers(parsedWorkers),
		topK:             *topK,
	}
	cfg.onImprove = func(best candidate, m analysis.Metrics, evals int, top []topCandidate) {
		checkpointMu.Lock()
		defer checkpointMu.Unlock()
		if m.Score >= bestCheckpoint {
			return
		}
		bestCheckpoint = m.Score
		params := applyCandidate(base, defs, best)
		if err := writeOutputs(info, 0, evals, defs, best, m, params, top); err != nil {
			fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
		}
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writeOutputs(info, result.elapsed, result.evals, defs, result.best, result.bestMetrics, result.bestParams, result.top); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		result.evals, result.elapsed, result.bestMetrics.Score, result.bestMetrics.Similarity*100.0, variant)
	fmt.Printf("Best knobs: wool=%.3f pinch=%.3f eq=%.3f output=%.3f\n",
		result.bestParams.Wool, result.bestParams.Pinch, result.bestParams.EQ, result.bestParams.Output)
}

func loadBaseParams(index int, path string) (mammoth.Params, error) {
	if path != "" {
		p, err := preset.LoadJSON(path)
		if err != nil {
			return mammoth.Params{}, err
		}
		return p.Params(), nil
	}
	if index >= 0 {
		p, ok := mammoth.PresetAt(index)
		if !ok {
			return mammoth.Params{}, fmt.Errorf("preset index %d out of range (have %d)", index, mammoth.PresetCount())
		}
		return p.Params(), nil
	}
	return *mammoth.NewDefaultParams(), nil
}

func readMono(path string, sampleRate int) ([]float64, error) {
	raw, sr, err := fitcommon.ReadWAVMono(path)
	if err != nil {
		return nil, err
	}
	return fitcommon.ResampleIfNeeded(raw, sr, sampleRate)
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}

	var rep struct {
		BestKnobs map[string]float64 `json:"best_knobs"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
