package sim

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is a single point in the simulation.
// Velocity is implicit: the integrator derives it from Position - LastPosition.
// Outside the force pipeline, Particles() values are read-only; change them through
// System.SetParticle and System.SetParticleColor.
type Particle struct {
	Position     mgl64.Vec2
	LastPosition mgl64.Vec2
	NetForce     mgl64.Vec2 // Accumulated this tick, already scaled by the timestep

	Color int
	ID    int // Equal to the particle's slot, stable across resizes
	Cell  int // Valid only between partition and integrate
}

// Velocity returns the per-tick displacement the integrator will carry forward.
func (p *Particle) Velocity() mgl64.Vec2 {
	return p.Position.Sub(p.LastPosition)
}

// allocateParticles grows or truncates the store to n particles.
// Survivors keep their slot; new particles get a uniform random position in [-size, size]²
// and color = slot mod numColors.
func allocateParticles(particles []Particle, n, numColors int, size float64, rng *rand.Rand) []Particle {
	if n < 0 {
		n = 0
	}
	if numColors < 1 {
		numColors = 1
	}

	current := len(particles)
	if current >= n {
		return particles[:n]
	}

	if cap(particles) < n {
		grown := make([]Particle, current, n)
		copy(grown, particles)
		particles = grown
	}

	for i := current; i < n; i++ {
		pos := mgl64.Vec2{
			rng.Float64()*2*size - size,
			rng.Float64()*2*size - size,
		}
		particles = append(particles, Particle{
			Position:     pos,
			LastPosition: pos,
			Color:        i % numColors,
			ID:           i,
		})
	}
	return particles
}
