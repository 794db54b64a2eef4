// Package stats measures a running system for the HUD and reports.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/olivierh59500/specks/internal/sim"
)

// Sample is one measurement of the whole population
type Sample struct {
	Tick          uint64
	Particles     int
	KineticEnergy float64 // Sum of v²/2 with unit mass, v in world units per second
	MeanSpeed     float64
	SpeedStdDev   float64
	MaxSpeed      float64
	ColorCounts   []int
}

// Measure samples the system. dt converts per-tick displacement to velocity.
func Measure(s *sim.System, dt float64) Sample {
	particles := s.Particles()
	sample := Sample{
		Tick:        s.TickCount(),
		Particles:   len(particles),
		ColorCounts: make([]int, s.ColorMatrix().NumColors()),
	}
	if len(particles) == 0 || dt <= 0 {
		return sample
	}

	speeds := make([]float64, len(particles))
	energies := make([]float64, len(particles))
	for i := range particles {
		p := &particles[i]
		v := p.Velocity().Len() / dt
		speeds[i] = v
		energies[i] = 0.5 * v * v
		if p.Color >= 0 && p.Color < len(sample.ColorCounts) {
			sample.ColorCounts[p.Color]++
		}
	}

	sample.KineticEnergy = floats.Sum(energies)
	sample.MaxSpeed = floats.Max(speeds)
	if len(speeds) > 1 {
		sample.MeanSpeed, sample.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	} else {
		sample.MeanSpeed = speeds[0]
	}
	return sample
}

// History keeps the most recent samples up to a fixed capacity
type History struct {
	capacity int
	samples  []Sample
}

// NewHistory creates a history holding at most capacity samples
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity, samples: make([]Sample, 0, capacity)}
}

// Add appends a sample, dropping the oldest when full
func (h *History) Add(s Sample) {
	if len(h.samples) == h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}
	h.samples = append(h.samples, s)
}

// Len returns the number of stored samples
func (h *History) Len() int { return len(h.samples) }

// Samples returns the stored samples, oldest first
func (h *History) Samples() []Sample { return h.samples }

// Last returns the newest sample
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Energies returns the kinetic energy series, oldest first
func (h *History) Energies() []float64 {
	out := make([]float64, len(h.samples))
	for i, s := range h.samples {
		out[i] = s.KineticEnergy
	}
	return out
}

// Ticks returns the tick of every sample as floats, for plotting
func (h *History) Ticks() []float64 {
	out := make([]float64, len(h.samples))
	for i, s := range h.samples {
		out[i] = float64(s.Tick)
	}
	return out
}
