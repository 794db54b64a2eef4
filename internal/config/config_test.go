package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/specks/internal/forces"
	"github.com/olivierh59500/specks/internal/palette"
	"github.com/olivierh59500/specks/internal/sim"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 500, cfg.Particles)
	assert.Equal(t, 5, cfg.Colors)
	assert.Equal(t, 100.0, cfg.BoxSize)
	assert.Equal(t, "wrap", cfg.Boundary)
	assert.InDelta(t, 1.0/60, cfg.Timestep(), 1e-15)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "run.yaml", `
particles: 1200
box_size: 250
boundary: clamp
seed: 99
flow:
  enabled: true
  strength: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Particles)
	assert.Equal(t, 250.0, cfg.BoxSize)
	assert.Equal(t, 40.0, cfg.InteractionRadius, "untouched keys keep defaults")
	assert.Equal(t, int64(99), cfg.Seed)
	assert.True(t, cfg.Flow.Enabled)
	assert.Equal(t, 2.0, cfg.Flow.Strength)
	assert.Equal(t, 0.02, cfg.Flow.Scale)
	assert.Equal(t, sim.BoundaryClamp, cfg.Params().Boundary)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "particles: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "repulsion_ratio: 1.5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repulsion_ratio")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative particles", func(c *Config) { c.Particles = -1 }, "particles"},
		{"no colors", func(c *Config) { c.Colors = 0 }, "colors"},
		{"zero box", func(c *Config) { c.BoxSize = 0 }, "box_size"},
		{"zero radius", func(c *Config) { c.InteractionRadius = 0 }, "interaction_radius"},
		{"negative friction", func(c *Config) { c.Friction = -0.1 }, "friction"},
		{"unknown boundary", func(c *Config) { c.Boundary = "bounce" }, "boundary"},
		{"dampening", func(c *Config) { c.ClampDampening = 2 }, "clamp_dampening"},
		{"tps", func(c *Config) { c.TPS = 0 }, "tps"},
		{"ragged matrix", func(c *Config) { c.Matrix = [][]float64{{1, 0}, {0}} }, "matrix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Particles = 42
	cfg.Matrix = [][]float64{{1, -1}, {0.5, 0}}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewSystem(t *testing.T) {
	cfg := Default()
	cfg.Particles = 30
	cfg.Colors = 3
	cfg.Seed = 5
	cfg.Matrix = [][]float64{{1, -1}, {0.5, 0}}
	cfg.Flow.Enabled = true

	s, flow, err := cfg.NewSystem()
	require.NoError(t, err)
	require.NotNil(t, flow)
	assert.Equal(t, 30, s.NumParticles())
	assert.Equal(t, 2, s.ColorMatrix().NumColors(), "matrix wins over colors")
	assert.Equal(t, -1.0, s.ColorMatrix().Attraction(0, 1))
	assert.Equal(t, palette.Specks[1], s.ColorMatrix().Color(1))
	assert.Len(t, s.Applicators(), 3)
	for i, p := range s.Particles() {
		assert.Equal(t, i%2, p.Color)
	}

	// Same seed, same placement
	again, _, err := cfg.NewSystem()
	require.NoError(t, err)
	assert.Equal(t, s.Particles(), again.Particles())
}

func TestNewSystem_Gravity(t *testing.T) {
	path := writeFile(t, "run.yaml", `
particles: 1
friction: 0
seed: 3
gravity:
  y: -9.8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, GravityConfig{Y: -9.8}, cfg.Gravity)

	s, flow, err := cfg.NewSystem()
	require.NoError(t, err)
	assert.Nil(t, flow)
	require.Len(t, s.Applicators(), 3)
	assert.IsType(t, forces.Gravity{}, s.Applicators()[2])

	dt := cfg.Timestep()
	s.Tick(dt)
	v := s.Particles()[0].Velocity()
	assert.InDelta(t, 0, v[0], 1e-12)
	assert.InDelta(t, -9.8*dt*dt, v[1], 1e-12)

	// No gravity by default
	plain, _, err := Default().NewSystem()
	require.NoError(t, err)
	assert.Len(t, plain.Applicators(), 2)
}

func TestNewSystem_RandomizedMatrix(t *testing.T) {
	cfg := Default()
	cfg.Seed = 8
	cfg.RandomizeMatrix = true
	s, flow, err := cfg.NewSystem()
	require.NoError(t, err)
	assert.Nil(t, flow)
	assert.NotEqual(t, sim.NewColorMatrix(5).Scales(), s.ColorMatrix().Scales())
}

func TestPreset_SaveLoad(t *testing.T) {
	m := sim.NewColorMatrix(3)
	m.Randomize(sim.NewSystem(0, 1, 1, sim.WithSeed(1)).Rand())
	m.SetColor(2, color.RGBA{9, 8, 7, 255})
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveMatrix(path, m))

	loaded := sim.NewColorMatrix(1)
	require.NoError(t, LoadMatrix(path, loaded))
	assert.Equal(t, m.Scales(), loaded.Scales())
	assert.Equal(t, color.RGBA{9, 8, 7, 255}, loaded.Color(2))
}

func TestPreset_BareArray(t *testing.T) {
	path := writeFile(t, "config.json", `[[0.1, -0.2], [0.3, 0.4]]`)
	m := sim.NewColorMatrix(5)
	require.NoError(t, LoadMatrix(path, m))
	assert.Equal(t, [][]float64{{0.1, -0.2}, {0.3, 0.4}}, m.Scales())
	assert.Equal(t, palette.Specks[0], m.Color(0))
}

func TestPreset_Invalid(t *testing.T) {
	m := sim.NewColorMatrix(2)
	assert.Error(t, LoadMatrix(writeFile(t, "a.json", `{"matrix": []}`), m))
	assert.Error(t, LoadMatrix(writeFile(t, "b.json", `{"matrix": [[1, 2], [3]]}`), m))
	assert.Error(t, LoadMatrix(writeFile(t, "c.json", `{`), m))
	assert.Equal(t, 2, m.NumColors(), "failed loads leave the matrix alone")
}

func TestNewSystem_PresetFile(t *testing.T) {
	m := sim.NewColorMatrix(4)
	m.SetAttraction(3, 0, -0.9)
	path := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, SaveMatrix(path, m))

	cfg := Default()
	cfg.Preset = path
	cfg.Particles = 8
	s, _, err := cfg.NewSystem()
	require.NoError(t, err)
	assert.Equal(t, 4, s.ColorMatrix().NumColors())
	assert.Equal(t, -0.9, s.ColorMatrix().Attraction(3, 0))

	cfg.Preset = filepath.Join(t.TempDir(), "missing.json")
	_, _, err = cfg.NewSystem()
	assert.Error(t, err)
}
