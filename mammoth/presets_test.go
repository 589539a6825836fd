package mammoth

import "testing"

func TestFactoryPresetTable(t *testing.T) {
	if got := PresetCount(); got != 8 {
		t.Fatalf("preset count: got %d want 8", got)
	}
	p, ok := PresetAt(0)
	if !ok {
		t.Fatalf("preset 0 missing")
	}
	want := Preset{Name: "Classic Wooly", Wool: 0.6, Pinch: 0.4, EQ: 0.3, Output: 0.7,
		Description: "The authentic Wooly Mammoth sound"}
	if p != want {
		t.Fatalf("preset 0 mismatch: got %+v want %+v", p, want)
	}
	if p.Params() != (Params{Wool: 0.6, Pinch: 0.4, EQ: 0.3, Output: 0.7}) {
		t.Fatalf("unexpected params %+v", p.Params())
	}
}

func TestPresetAtMatchesTable(t *testing.T) {
	list := FactoryPresets()
	if len(list) != PresetCount() {
		t.Fatalf("table length %d, count %d", len(list), PresetCount())
	}
	for i, want := range list {
		got, ok := PresetAt(i)
		if !ok {
			t.Fatalf("preset %d missing", i)
		}
		if got != want {
			t.Fatalf("preset %d: got %+v want %+v", i, got, want)
		}
		p := got.Params()
		if p.Wool != got.Wool || p.Pinch != got.Pinch || p.EQ != got.EQ || p.Output != got.Output {
			t.Fatalf("preset %d params %+v do not match %+v", i, p, got)
		}
	}
}

func TestPresetAtOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, PresetCount(), 100} {
		if _, ok := PresetAt(idx); ok {
			t.Fatalf("expected index %d to be rejected", idx)
		}
	}
}

func TestFactoryPresetsValuesInRange(t *testing.T) {
	names := map[string]bool{}
	for i, p := range FactoryPresets() {
		if p.Name == "" {
			t.Fatalf("preset %d has no name", i)
		}
		if names[p.Name] {
			t.Fatalf("duplicate preset name %q", p.Name)
		}
		names[p.Name] = true
		if p.Params().Clamped() != p.Params() {
			t.Fatalf("preset %q has values outside [0,1]: %+v", p.Name, p)
		}
	}
}

func TestFactoryPresetsReturnsCopy(t *testing.T) {
	list := FactoryPresets()
	list[0].Wool = 0
	list[0].Name = "changed"
	p, _ := PresetAt(0)
	if p.Wool != 0.6 || p.Name != "Classic Wooly" {
		t.Fatalf("factory table was modified through returned slice: %+v", p)
	}
}
