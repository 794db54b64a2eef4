package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ForceApplicator is anything that can do work on the system: the color interaction,
// friction, or something altogether different such as gravity.
// Implementations read positions and add into each particle's NetForce.
type ForceApplicator interface {
	ApplyForces(s *System, dt float64)
}

// ForceFunc adapts a plain function to ForceApplicator
type ForceFunc func(s *System, dt float64)

// ApplyForces calls f(s, dt)
func (f ForceFunc) ApplyForces(s *System, dt float64) { f(s, dt) }

// WrappedDelta returns other - self on the torus of half-extent size, each component
// reduced into (-size, size].
func WrappedDelta(self, other mgl64.Vec2, size float64) mgl64.Vec2 {
	d := other.Sub(self)
	for i := 0; i < 2; i++ {
		if d[i] > size {
			d[i] -= 2 * size
		}
		if d[i] < -size {
			d[i] += 2 * size
		}
	}
	return d
}

// PairForce is the force felt by a particle from a neighbour at displacement delta.
// Below beta*radius it is a hard repulsion rising linearly to radius at contact; between
// beta*radius and radius it is a tent peaking at (1+beta)/2, scaled by attraction.
// The two branches meet at zero when the distance is exactly beta*radius.
func PairForce(delta mgl64.Vec2, radius, beta, attraction float64) mgl64.Vec2 {
	distance := delta.Len()
	if distance == 0 || distance > radius {
		return mgl64.Vec2{}
	}

	dir := delta.Mul(1 / distance)
	ratio := distance / radius

	var strength float64
	if ratio <= beta {
		strength = (ratio/beta - 1) * radius
	} else {
		tent := 1 - math.Abs(2*ratio-1-beta)/(1-beta)
		strength = tent * attraction * radius
	}
	return dir.Mul(strength)
}

// ColorForce applies the color-matrix pair force using the grid neighbourhoods.
type ColorForce struct {
	Matrix *ColorMatrix
}

// NewColorForce creates the color interaction applicator reading from matrix.
func NewColorForce(matrix *ColorMatrix) *ColorForce {
	return &ColorForce{Matrix: matrix}
}

// ApplyForces accumulates every neighbour's pair force, scaled by dt, into NetForce.
// Each particle writes only its own NetForce, so the particle loop is split across workers
// without locks.
func (f *ColorForce) ApplyForces(s *System, dt float64) {
	particles := s.particles
	grid := s.grid
	size := s.params.BoxSize
	radius := s.params.InteractionRadius
	beta := s.params.RepulsionRatio
	matrix := f.Matrix

	job := func(start, end int) {
		var neighbors [9]int
		for i := start; i < end; i++ {
			particle := &particles[i]
			force := mgl64.Vec2{}

			n := grid.Neighbors(particle.Cell, &neighbors)
			for c := 0; c < n; c++ {
				for _, otherID := range grid.Bucket(neighbors[c]) {
					if otherID == particle.ID {
						continue
					}
					other := &particles[otherID]
					delta := WrappedDelta(particle.Position, other.Position, size)
					attraction := matrix.Attraction(particle.Color, other.Color)
					force = force.Add(PairForce(delta, radius, beta, attraction))
				}
			}

			particle.NetForce = particle.NetForce.Add(force.Mul(dt))
		}
	}

	s.dispatch(len(particles), job)
}

// FrictionForce damps the implicit velocity: NetForce -= mu * (Position - LastPosition).
// The velocity is already a per-tick displacement, so dt is not applied again.
type FrictionForce struct{}

// ApplyForces adds the damping term of every particle.
func (FrictionForce) ApplyForces(s *System, dt float64) {
	mu := s.params.Friction
	if mu == 0 {
		return
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.NetForce = p.NetForce.Sub(p.Velocity().Mul(mu))
	}
}
