// Package config loads run settings for the drivers and persists color matrix presets.
package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/olivierh59500/specks/internal/forces"
	"github.com/olivierh59500/specks/internal/palette"
	"github.com/olivierh59500/specks/internal/sim"
)

// FlowConfig enables the perlin flow field
type FlowConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"`
	Scale    float64 `yaml:"scale"`
	Speed    float64 `yaml:"speed"`
}

// GravityConfig is a constant acceleration applied to every particle
type GravityConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Config is everything needed to build and drive a simulation
type Config struct {
	Particles         int     `yaml:"particles"`
	Colors            int     `yaml:"colors"`
	BoxSize           float64 `yaml:"box_size"`
	InteractionRadius float64 `yaml:"interaction_radius"`
	RepulsionRatio    float64 `yaml:"repulsion_ratio"`
	Friction          float64 `yaml:"friction"`
	Multithreaded     bool    `yaml:"multithreaded"`
	Workers           int     `yaml:"workers"`
	Boundary          string  `yaml:"boundary"`
	ClampDampening    float64 `yaml:"clamp_dampening"`
	TPS               int     `yaml:"tps"`
	Seed              int64   `yaml:"seed"` // 0 picks a time-based seed

	RandomizeMatrix bool        `yaml:"randomize_matrix"`
	Matrix          [][]float64 `yaml:"matrix,omitempty"`
	Preset          string      `yaml:"preset,omitempty"` // JSON matrix preset, wins over Matrix

	Flow    FlowConfig    `yaml:"flow"`
	Gravity GravityConfig `yaml:"gravity"`
}

// Default returns the settings the viewer starts with
func Default() Config {
	p := sim.DefaultParams()
	return Config{
		Particles:         500,
		Colors:            5,
		BoxSize:           p.BoxSize,
		InteractionRadius: p.InteractionRadius,
		RepulsionRatio:    p.RepulsionRatio,
		Friction:          p.Friction,
		Multithreaded:     p.Multithreaded,
		Workers:           p.Workers,
		Boundary:          p.Boundary.String(),
		ClampDampening:    p.ClampDampening,
		TPS:               60,
		Flow: FlowConfig{
			Strength: 5,
			Scale:    0.02,
			Speed:    0.1,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Save writes the config as YAML
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config %s", path)
}

// Validate reports the first setting the simulation cannot run with
func (c Config) Validate() error {
	switch {
	case c.Particles < 0:
		return errors.Errorf("particles must not be negative, got %d", c.Particles)
	case c.Colors < 1:
		return errors.Errorf("colors must be at least 1, got %d", c.Colors)
	case c.BoxSize <= 0:
		return errors.Errorf("box_size must be positive, got %v", c.BoxSize)
	case c.InteractionRadius <= 0:
		return errors.Errorf("interaction_radius must be positive, got %v", c.InteractionRadius)
	case c.RepulsionRatio <= 0 || c.RepulsionRatio >= 1:
		return errors.Errorf("repulsion_ratio must be in (0, 1), got %v", c.RepulsionRatio)
	case c.Friction < 0:
		return errors.Errorf("friction must not be negative, got %v", c.Friction)
	case c.Boundary != "wrap" && c.Boundary != "clamp":
		return errors.Errorf("boundary must be wrap or clamp, got %q", c.Boundary)
	case c.ClampDampening < 0 || c.ClampDampening > 1:
		return errors.Errorf("clamp_dampening must be in [0, 1], got %v", c.ClampDampening)
	case c.TPS <= 0:
		return errors.Errorf("tps must be positive, got %d", c.TPS)
	}
	for i, row := range c.Matrix {
		if len(row) != len(c.Matrix) {
			return errors.Errorf("matrix row %d has %d entries, want %d", i, len(row), len(c.Matrix))
		}
	}
	return nil
}

// Params converts to simulation parameters
func (c Config) Params() sim.Params {
	boundary := sim.BoundaryWrap
	if c.Boundary == "clamp" {
		boundary = sim.BoundaryClamp
	}
	return sim.Params{
		BoxSize:           c.BoxSize,
		InteractionRadius: c.InteractionRadius,
		RepulsionRatio:    c.RepulsionRatio,
		Friction:          c.Friction,
		Multithreaded:     c.Multithreaded,
		Workers:           c.Workers,
		Boundary:          boundary,
		ClampDampening:    c.ClampDampening,
	}
}

// Timestep is the fixed dt of one tick at the configured rate
func (c Config) Timestep() float64 {
	return 1 / float64(c.TPS)
}

// NewSystem builds a system from the config: particles, matrix, palette, gravity when set
// and, when enabled, the flow field. The returned flow is nil when disabled.
func (c Config) NewSystem() (*sim.System, *forces.Flow, error) {
	opts := []sim.Option{sim.WithParams(c.Params())}
	if c.Seed != 0 {
		opts = append(opts, sim.WithSeed(c.Seed))
	}
	s := sim.NewSystem(c.Particles, c.Colors, c.BoxSize, opts...)

	m := s.ColorMatrix()
	switch {
	case c.Preset != "":
		if err := LoadMatrix(c.Preset, m); err != nil {
			return nil, nil, err
		}
		s.SetNumColors(m.NumColors())
	case len(c.Matrix) > 0:
		m.SetScales(c.Matrix)
		s.SetNumColors(m.NumColors())
	case c.RandomizeMatrix:
		m.Randomize(s.Rand())
	}
	if c.Preset == "" {
		palette.Apply(m, palette.For(m.NumColors()))
	}

	if c.Gravity != (GravityConfig{}) {
		s.AddApplicator(forces.Gravity{Acceleration: mgl64.Vec2{c.Gravity.X, c.Gravity.Y}})
	}

	var flow *forces.Flow
	if c.Flow.Enabled {
		flow = forces.NewFlow(s.Rand().Int63(), c.Flow.Strength, c.Flow.Scale, c.Flow.Speed)
		s.AddApplicator(flow)
	}
	return s, flow, nil
}
