package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-mammoth/mammoth"
)

// File is the JSON schema for user presets. Unset knobs keep the value of
// the base preset, or the host default when no base is named.
type File struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Base        string   `json:"base,omitempty"`
	Wool        *float64 `json:"wool,omitempty"`
	Pinch       *float64 `json:"pinch,omitempty"`
	EQ          *float64 `json:"eq,omitempty"`
	Output      *float64 `json:"output,omitempty"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*mammoth.Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	params := mammoth.NewDefaultParams()
	if base := strings.TrimSpace(f.Base); base != "" {
		bp, ok := FactoryByName(base)
		if !ok {
			return nil, fmt.Errorf("unknown base preset %q", base)
		}
		*params = bp.Params()
	}
	if err := ApplyFile(params, &f); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &mammoth.Preset{
		Name:        name,
		Wool:        params.Wool,
		Pinch:       params.Pinch,
		EQ:          params.EQ,
		Output:      params.Output,
		Description: f.Description,
	}, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *mammoth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	fields := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"wool", f.Wool, &dst.Wool},
		{"pinch", f.Pinch, &dst.Pinch},
		{"eq", f.EQ, &dst.EQ},
		{"output", f.Output, &dst.Output},
	}
	for _, fd := range fields {
		if fd.src == nil {
			continue
		}
		if *fd.src < 0 || *fd.src > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", fd.name, *fd.src)
		}
	}
	for _, fd := range fields {
		if fd.src != nil {
			*fd.dst = *fd.src
		}
	}
	return nil
}

// FromPreset builds a fully populated file from p.
func FromPreset(p mammoth.Preset) File {
	wool, pinch, eq, output := p.Wool, p.Pinch, p.EQ, p.Output
	return File{
		Name:        p.Name,
		Description: p.Description,
		Wool:        &wool,
		Pinch:       &pinch,
		EQ:          &eq,
		Output:      &output,
	}
}

// SaveJSON writes p to path as an indented preset file.
func SaveJSON(path string, p mammoth.Preset) error {
	b, err := json.MarshalIndent(FromPreset(p), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

// FactoryByName looks up a factory preset by case-insensitive name.
func FactoryByName(name string) (mammoth.Preset, bool) {
	for _, p := range mammoth.FactoryPresets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return mammoth.Preset{}, false
}
