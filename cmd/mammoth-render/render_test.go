package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/pedal"
)

func TestLoadInputGeneratesTone(t *testing.T) {
	chans, err := loadInput("", 48000, 100, 0.5, 0.5)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if len(chans) != 1 || len(chans[0]) != 24000 {
		t.Fatalf("unexpected shape %d x %d", len(chans), len(chans[0]))
	}
	if _, err := loadInput("", 48000, 100, 0.5, 0); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestLoadInputReadsAndResamplesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	data := make([]float32, 4410)
	for i := range data {
		data[i] = float32(0.3 * math.Sin(float64(i)*0.05))
	}
	if err := fitcommon.WriteWAV(path, [][]float32{data, data}, 44100); err != nil {
		t.Fatalf("write: %v", err)
	}
	chans, err := loadInput(path, 48000, 0, 0, 0)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if len(chans) != 2 {
		t.Fatalf("expected stereo input, got %d channels", len(chans))
	}
	if math.Abs(float64(len(chans[0]))-4800) > 64 {
		t.Fatalf("expected resampled length near 4800, got %d", len(chans[0]))
	}
}

func TestRenderBlocksMatchSingleEngine(t *testing.T) {
	in, err := loadInput("", 48000, 110, 0.6, 0.1)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}

	blocked := pedal.New(1)
	blocked.Prepare(48000)
	a := render(blocked, in, 37)

	whole := pedal.New(1)
	whole.Prepare(48000)
	b := render(whole, in, len(in[0]))

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("sample %d differs between block sizes: %f vs %f", i, a[0][i], b[0][i])
		}
	}
}

func TestRenderBypassCopiesInput(t *testing.T) {
	in := [][]float64{{0.1, -0.2, 0.3}}
	p := pedal.New(1)
	p.Controls().SetBypass(true)
	out := render(p, in, 2)
	for i, v := range out[0] {
		if v != float32(in[0][i]) {
			t.Fatalf("sample %d: got %f want %f", i, v, in[0][i])
		}
	}
}

func TestNewCabinetSynthAndApply(t *testing.T) {
	conv, ir, err := newCabinet(cabSynth, 48000, 3, 1)
	if err != nil {
		t.Fatalf("newCabinet: %v", err)
	}
	if len(ir) == 0 || conv.IRLen() != len(ir) {
		t.Fatalf("synth IR length %d, convolver %d", len(ir), conv.IRLen())
	}

	out := [][]float32{make([]float32, 512), make([]float32, 512)}
	out[0][0] = 1
	out[1][0] = 1
	if err := applyCabinet(conv, out); err != nil {
		t.Fatalf("applyCabinet: %v", err)
	}
	for c := range out {
		for i := 0; i < 64; i++ {
			if math.Abs(float64(out[c][i]-ir[i])) > 1e-3 {
				t.Fatalf("ch %d sample %d: got %f want %f", c, i, out[c][i], ir[i])
			}
		}
	}
}

func TestNewCabinetMissingFile(t *testing.T) {
	if _, _, err := newCabinet(filepath.Join(t.TempDir(), "none.wav"), 48000, 1, 1); err == nil {
		t.Fatalf("expected error for missing IR file")
	}
}
