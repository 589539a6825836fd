package mammoth

// Preset is a named, immutable set of control values.
type Preset struct {
	Name        string
	Wool        float64
	Pinch       float64
	EQ          float64
	Output      float64
	Description string
}

// Params returns the preset's control values.
func (p Preset) Params() Params {
	return Params{Wool: p.Wool, Pinch: p.Pinch, EQ: p.EQ, Output: p.Output}
}

var factoryPresets = [...]Preset{
	{"Classic Wooly", 0.6, 0.4, 0.3, 0.7, "The authentic Wooly Mammoth sound"},
	{"Velcro Rip", 0.7, 0.8, 0.2, 0.6, "Extreme gated fuzz with velcro texture"},
	{"Bass Destroyer", 0.8, 0.6, 0.1, 0.8, "Maximum bass fuzz destruction"},
	{"Gated Synth", 0.4, 0.9, 0.4, 0.5, "Heavily gated synth bass tones"},
	{"Smooth Fuzz", 0.5, 0.2, 0.6, 0.8, "Less gated, more sustained fuzz"},
	{"Sputtery Gate", 0.3, 0.7, 0.2, 0.6, "Unstable gated fuzz sputter"},
	{"Mild Mammoth", 0.4, 0.3, 0.5, 0.7, "Tamed but still fuzzy"},
	{"Extreme Pinch", 0.5, 1.0, 0.3, 0.4, "Maximum bias starvation"},
}

// PresetCount returns the number of factory presets.
func PresetCount() int {
	return len(factoryPresets)
}

// PresetAt returns the factory preset at index.
func PresetAt(index int) (Preset, bool) {
	if index < 0 || index >= len(factoryPresets) {
		return Preset{}, false
	}
	return factoryPresets[index], true
}

// FactoryPresets returns a copy of the factory table in program order.
func FactoryPresets() []Preset {
	out := make([]Preset, len(factoryPresets))
	copy(out, factoryPresets[:])
	return out
}
