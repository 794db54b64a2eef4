package config

import (
	"bytes"
	"encoding/json"
	"image/color"
	"os"

	"github.com/pkg/errors"

	"github.com/olivierh59500/specks/internal/palette"
	"github.com/olivierh59500/specks/internal/sim"
)

// Preset is a saved color matrix with its display colors
type Preset struct {
	Matrix [][]float64  `json:"matrix"`
	Colors []color.RGBA `json:"colors,omitempty"`
}

// PresetOf captures the current state of a matrix
func PresetOf(m *sim.ColorMatrix) Preset {
	p := Preset{Matrix: m.Scales(), Colors: make([]color.RGBA, m.NumColors())}
	for i := range p.Colors {
		p.Colors[i] = m.Color(i)
	}
	return p
}

// ApplyTo loads the preset into m, resizing it to the preset's color count.
// Missing colors fall back to the default palette.
func (p Preset) ApplyTo(m *sim.ColorMatrix) error {
	if len(p.Matrix) == 0 {
		return errors.New("preset has an empty matrix")
	}
	for i, row := range p.Matrix {
		if len(row) != len(p.Matrix) {
			return errors.Errorf("preset matrix row %d has %d entries, want %d", i, len(row), len(p.Matrix))
		}
	}

	m.SetScales(p.Matrix)
	if len(p.Colors) >= m.NumColors() {
		palette.Apply(m, p.Colors[:m.NumColors()])
	} else {
		palette.Apply(m, palette.For(m.NumColors()))
	}
	return nil
}

// SaveMatrix writes the matrix and its colors to a JSON file
func SaveMatrix(path string, m *sim.ColorMatrix) error {
	data, err := json.MarshalIndent(PresetOf(m), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding preset")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing preset %s", path)
}

// LoadMatrix reads a preset written by SaveMatrix into m. A bare JSON array of rows
// is accepted as well.
func LoadMatrix(path string, m *sim.ColorMatrix) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading preset %s", path)
	}

	var p Preset
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &p.Matrix)
	} else {
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return errors.Wrapf(err, "parsing preset %s", path)
	}
	return errors.Wrapf(p.ApplyTo(m), "preset %s", path)
}
