package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-mammoth/analysis"
	"github.com/cwbudde/algo-mammoth/mammoth"
	"github.com/cwbudde/algo-mammoth/preset"
)

func TestLoadCandidateFromReportBestKnobs(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "rep.json")
	if err := os.WriteFile(reportPath, []byte(`{"best_knobs":{"wool":0.8,"pinch":1.7,"gain":3}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	defs, _ := parseKnobs("wool,pinch,eq")
	fallback := candidate{Vals: []float64{0.1, 0.2, 0.3}}

	got, ok, err := loadCandidateFromReport(reportPath, defs, fallback)
	if err != nil || !ok {
		t.Fatalf("loadCandidateFromReport: ok=%v err=%v", ok, err)
	}
	want := []float64{0.8, 1, 0.3}
	for i := range want {
		if got.Vals[i] != want[i] {
			t.Fatalf("Vals[%d] = %f, want %f", i, got.Vals[i], want[i])
		}
	}
}

func TestLoadCandidateFromReportMissingFile(t *testing.T) {
	defs, _ := parseKnobs("wool")
	fallback := candidate{Vals: []float64{0.5}}
	got, ok, err := loadCandidateFromReport(filepath.Join(t.TempDir(), "missing.json"), defs, fallback)
	if err != nil || ok {
		t.Fatalf("expected silent fallback, ok=%v err=%v", ok, err)
	}
	if got.Vals[0] != 0.5 {
		t.Fatalf("fallback not returned")
	}
}

func TestLoadBaseParams(t *testing.T) {
	p, err := loadBaseParams(-1, "")
	if err != nil || p != *mammoth.NewDefaultParams() {
		t.Fatalf("defaults: %+v %v", p, err)
	}
	p, err = loadBaseParams(1, "")
	if err != nil || p.Pinch != 0.8 {
		t.Fatalf("preset 1: %+v %v", p, err)
	}
	if _, err := loadBaseParams(99, ""); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestWriteOutputsWritesPresetAndReport(t *testing.T) {
	dir := t.TempDir()
	info := outputInfo{
		dryPath:       "dry.wav",
		referencePath: "wet.wav",
		outputPreset:  filepath.Join(dir, "presets", "fit.json"),
		presetName:    "My Fit",
		sampleRate:    48000,
		variant:       "desma",
	}
	defs, _ := parseKnobs("wool,pinch")
	best := candidate{Vals: []float64{0.25, 0.75}}
	params := mammoth.Params{Wool: 0.25, Pinch: 0.75, EQ: 0.5, Output: 0.5}
	if err := writeOutputs(info, 1.5, 10, defs, best, analysis.Metrics{Score: 0.1}, params, nil); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}

	p, err := preset.LoadJSON(info.outputPreset)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.Name != "My Fit" || p.Params() != params {
		t.Fatalf("preset = %+v", p)
	}

	got, ok, err := loadCandidateFromReport(info.outputPreset+".report.json", defs, candidate{Vals: []float64{0, 0}})
	if err != nil || !ok {
		t.Fatalf("report not readable: ok=%v err=%v", ok, err)
	}
	if got.Vals[0] != 0.25 || got.Vals[1] != 0.75 {
		t.Fatalf("report knobs = %v", got.Vals)
	}
}
