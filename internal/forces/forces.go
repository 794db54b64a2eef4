// Package forces holds force applicators beyond the built-in color and friction forces.
// Each one plugs into sim.System's pipeline.
package forces

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivierh59500/specks/internal/sim"
)

// Perlin parameters: smoothness, frequency step, octaves
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// Flow pushes particles along a slowly evolving perlin noise field
type Flow struct {
	Strength float64 // Force magnitude
	Scale    float64 // World units to noise units
	Speed    float64 // Field evolution per second

	noise *perlin.Perlin
	phase float64
}

// NewFlow creates a flow field from seed
func NewFlow(seed int64, strength, scale, speed float64) *Flow {
	return &Flow{
		Strength: strength,
		Scale:    scale,
		Speed:    speed,
		noise:    perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

// Direction returns the unit field direction at a point
func (f *Flow) Direction(p mgl64.Vec2) mgl64.Vec2 {
	n := f.noise.Noise2D(p[0]*f.Scale, p[1]*f.Scale+f.phase)
	angle := (n + 1) * math.Pi
	return mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
}

// ApplyForces adds the field force scaled by dt and advances the field
func (f *Flow) ApplyForces(s *sim.System, dt float64) {
	particles := s.Particles()
	for i := range particles {
		p := &particles[i]
		p.NetForce = p.NetForce.Add(f.Direction(p.Position).Mul(f.Strength * dt))
	}
	f.phase += f.Speed * dt
}

// Attractor pulls particles within Radius toward Point, strongest at the center.
// Distances wrap around the box like the color force.
type Attractor struct {
	Point    mgl64.Vec2
	Radius   float64
	Strength float64 // Negative repels
	Active   bool
}

// ApplyForces adds the pull of an active attractor
func (a *Attractor) ApplyForces(s *sim.System, dt float64) {
	if !a.Active || a.Radius <= 0 {
		return
	}
	size := s.BoundingBoxSize()
	particles := s.Particles()
	for i := range particles {
		p := &particles[i]
		delta := sim.WrappedDelta(p.Position, a.Point, size)
		distance := delta.Len()
		if distance == 0 || distance > a.Radius {
			continue
		}
		falloff := 1 - distance/a.Radius
		p.NetForce = p.NetForce.Add(delta.Mul(a.Strength * falloff * dt / distance))
	}
}

// Gravity is a constant acceleration
type Gravity struct {
	Acceleration mgl64.Vec2
}

// ApplyForces adds Acceleration*dt to every particle
func (g Gravity) ApplyForces(s *sim.System, dt float64) {
	step := g.Acceleration.Mul(dt)
	particles := s.Particles()
	for i := range particles {
		particles[i].NetForce = particles[i].NetForce.Add(step)
	}
}
