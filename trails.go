package main

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivierh59500/specks/internal/sim"
)

// Trails remembers the last few positions of every particle for trail drawing
type Trails struct {
	length int
	points [][]mgl64.Vec2
}

// NewTrails keeps up to length positions per particle
func NewTrails(length int) *Trails {
	return &Trails{length: max(length, 2)}
}

// Record appends the current positions. A change in particle count starts over.
func (t *Trails) Record(particles []sim.Particle) {
	if len(t.points) != len(particles) {
		t.points = make([][]mgl64.Vec2, len(particles))
		for i := range t.points {
			t.points[i] = make([]mgl64.Vec2, 0, t.length)
		}
	}
	for i := range particles {
		trail := t.points[i]
		if len(trail) == t.length {
			copy(trail, trail[1:])
			trail = trail[:len(trail)-1]
		}
		t.points[i] = append(trail, particles[i].Position)
	}
}

// Of returns particle i's trail, oldest first
func (t *Trails) Of(i int) []mgl64.Vec2 {
	if i < 0 || i >= len(t.points) {
		return nil
	}
	return t.points[i]
}

// Reset forgets all trails
func (t *Trails) Reset() { t.points = nil }
