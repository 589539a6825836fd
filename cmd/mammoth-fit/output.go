package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/algo-mammoth/preset"
)

type runReport struct {
	DryPath        string             `json:"dry_path"`
	ReferencePath  string             `json:"reference_path"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	TopCandidates  []topCandidate     `json:"top_candidates,omitempty"`
}

type outputInfo struct {
	dryPath       string
	referencePath string
	outputPreset  string
	reportPath    string
	presetName    string
	sampleRate    int
	variant       string
}

func writeOutputs(
	info outputInfo,
	elapsed float64,
	evals int,
	defs []knobDef,
	best candidate,
	bestM analysis.Metrics,
	bestParams mammoth.Params,
	top []topCandidate,
) error {
	p := mammoth.Preset{
		Name:        info.presetName,
		Wool:        bestParams.Wool,
		Pinch:       bestParams.Pinch,
		EQ:          bestParams.EQ,
		Output:      bestParams.Output,
		Description: "Fitted to " + filepath.Base(info.referencePath),
	}
	if err := os.MkdirAll(filepath.Dir(info.outputPreset), 0o755); err != nil {
		return err
	}
	if err := preset.SaveJSON(info.outputPreset, p); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = best.Vals[i]
	}

	rep := runReport{
		DryPath:        info.dryPath,
		ReferencePath:  info.referencePath,
		OutputPreset:   info.outputPreset,
		SampleRate:     info.sampleRate,
		DurationSec:    elapsed,
		Evaluations:    evals,
		MayflyVariant:  info.variant,
		BestScore:      bestM.Score,
		BestSimilarity: bestM.Similarity,
		BestMetrics:    bestM,
		BestKnobs:      knobs,
		TopCandidates:  top,
	}

	reportPath := info.reportPath
	if reportPath == "" {
		reportPath = info.outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
