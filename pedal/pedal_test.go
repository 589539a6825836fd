package pedal

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-mammoth/mammoth"
)

func stereoSine(n int, freq, sampleRate float64) [][]float32 {
	buf := [][]float32{make([]float32, n), make([]float32, n)}
	for i := 0; i < n; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		buf[0][i] = v
		buf[1][i] = -v
	}
	return buf
}

func TestDefaults(t *testing.T) {
	p := New(2)
	c := p.Controls()
	want := map[string]float64{"eq": 0.5, "wool": 0.5, "pinch": 0.3, "output": 0.5}
	for name, v := range want {
		got, err := c.Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if got != v {
			t.Fatalf("default %s: got %f want %f", name, got, v)
		}
	}
	if c.Bypass() {
		t.Fatalf("bypass should default to false")
	}
	if c.Program() != 0 {
		t.Fatalf("program should default to 0, got %d", c.Program())
	}
	if got := p.Engine(0).Params(); got != *mammoth.NewDefaultParams() {
		t.Fatalf("engine params %+v do not match defaults", got)
	}
}

func TestBypassIsTransparent(t *testing.T) {
	p := New(2)
	p.Prepare(48000)
	p.ProcessBlock(stereoSine(256, 220, 48000))

	before := p.Engine(0).State()
	p.Controls().SetBypass(true)

	buf := stereoSine(512, 330, 48000)
	ref := stereoSine(512, 330, 48000)
	p.ProcessBlock(buf)
	for ch := range buf {
		for i := range buf[ch] {
			if buf[ch][i] != ref[ch][i] {
				t.Fatalf("bypass changed ch %d sample %d: %f != %f", ch, i, buf[ch][i], ref[ch][i])
			}
		}
	}
	if after := p.Engine(0).State(); after != before {
		t.Fatalf("bypass advanced engine state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestProcessBlockAltersSignal(t *testing.T) {
	p := New(2)
	p.Prepare(48000)
	buf := stereoSine(2048, 110, 48000)
	ref := stereoSine(2048, 110, 48000)
	p.ProcessBlock(buf)

	var diff float64
	for i := range buf[0] {
		diff += math.Abs(float64(buf[0][i] - ref[0][i]))
	}
	if diff == 0 {
		t.Fatalf("expected processed block to differ from input")
	}
}

func TestExtraChannelsAreCleared(t *testing.T) {
	p := New(1)
	buf := [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	p.ProcessBlock64(buf)
	for i, v := range buf[1] {
		if v != 0 {
			t.Fatalf("extra channel sample %d not cleared: %f", i, v)
		}
	}
}

func TestControlChangesReachEngines(t *testing.T) {
	p := New(2)
	if err := p.Controls().Set(ControlWool, 0.9); err != nil {
		t.Fatalf("set wool: %v", err)
	}
	p.ProcessBlock64([][]float64{make([]float64, 8), make([]float64, 8)})
	for ch := 0; ch < p.Channels(); ch++ {
		if got := p.Engine(ch).Params().Wool; got != 0.9 {
			t.Fatalf("channel %d wool: got %f want 0.9", ch, got)
		}
	}
}

func TestLoadPreset(t *testing.T) {
	p := New(2)
	if err := p.LoadPreset(0); err != nil {
		t.Fatalf("load preset: %v", err)
	}
	want := mammoth.Params{Wool: 0.6, Pinch: 0.4, EQ: 0.3, Output: 0.7}
	if got := p.Controls().Params(); got != want {
		t.Fatalf("controls after preset: got %+v want %+v", got, want)
	}
	if p.Controls().Program() != 0 {
		t.Fatalf("program not recorded")
	}
	if err := p.LoadPreset(7); err != nil {
		t.Fatalf("load preset 7: %v", err)
	}
	if p.Controls().Program() != 7 || p.Controls().Params().Pinch != 1.0 {
		t.Fatalf("preset 7 not applied: %+v", p.Controls().Params())
	}
}

func TestLoadEveryPreset(t *testing.T) {
	p := New(2)
	for i, preset := range mammoth.FactoryPresets() {
		t.Run(preset.Name, func(t *testing.T) {
			if err := p.LoadPreset(i); err != nil {
				t.Fatalf("load preset %d: %v", i, err)
			}
			if got := p.Controls().Params(); got != preset.Params() {
				t.Fatalf("controls: got %+v want %+v", got, preset.Params())
			}
			if p.Controls().Program() != i {
				t.Fatalf("program: got %d want %d", p.Controls().Program(), i)
			}
			if p.PresetName(i) != preset.Name {
				t.Fatalf("name: got %q want %q", p.PresetName(i), preset.Name)
			}
		})
	}
}

func TestLoadPresetRejectsInvalidIndex(t *testing.T) {
	p := New(1)
	_ = p.LoadPreset(2)
	before := p.Controls().Params()

	for _, idx := range []int{-1, mammoth.PresetCount(), 42} {
		err := p.LoadPreset(idx)
		if !errors.Is(err, ErrInvalidPreset) {
			t.Fatalf("index %d: expected ErrInvalidPreset, got %v", idx, err)
		}
	}
	if got := p.Controls().Params(); got != before {
		t.Fatalf("invalid preset changed params: %+v", got)
	}
	if p.Controls().Program() != 2 {
		t.Fatalf("invalid preset changed program to %d", p.Controls().Program())
	}
}

func TestPresetNames(t *testing.T) {
	p := New(1)
	names := p.Presets()
	if len(names) != mammoth.PresetCount() {
		t.Fatalf("got %d names", len(names))
	}
	if names[0] != "Classic Wooly" || p.PresetName(0) != "Classic Wooly" {
		t.Fatalf("unexpected first preset name %q", names[0])
	}
	if p.PresetName(-1) != "" || p.PresetName(len(names)) != "" {
		t.Fatalf("out-of-range names should be empty")
	}
}

func TestResetMatchesFreshPedal(t *testing.T) {
	a := New(1)
	a.Prepare(44100)
	a.ProcessBlock64([][]float64{make([]float64, 64)})
	buf := [][]float64{make([]float64, 512)}
	for i := range buf[0] {
		buf[0][i] = math.Sin(float64(i) * 0.05)
	}
	a.ProcessBlock64(buf)
	a.Reset()

	b := New(1)
	b.Prepare(44100)
	if a.Engine(0).State() != b.Engine(0).State() {
		t.Fatalf("reset state differs from fresh state")
	}
}
