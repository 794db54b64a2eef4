// Package sim is the particle life physics engine: a flat particle store, a uniform grid
// over a toroidal box, color-matrix and friction forces, and a Verlet integrator.
package sim

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Boundary selects what happens to particles leaving the box
type Boundary int

const (
	// BoundaryWrap teleports to the opposite edge keeping velocity (torus)
	BoundaryWrap Boundary = iota
	// BoundaryClamp snaps to the edge and reflects an attenuated velocity
	BoundaryClamp
)

func (b Boundary) String() string {
	switch b {
	case BoundaryClamp:
		return "clamp"
	default:
		return "wrap"
	}
}

// Params are the global simulation parameters
type Params struct {
	BoxSize           float64 // Half-extent S, the box spans [-S, S] on both axes
	InteractionRadius float64 // Rmax, pair force is zero beyond it
	RepulsionRatio    float64 // Beta, fraction of Rmax with pure repulsion
	Friction          float64 // Mu, velocity damping coefficient
	Multithreaded     bool
	Workers           int
	Boundary          Boundary
	ClampDampening    float64 // Velocity kept after bouncing off an edge in clamp mode
}

// DefaultParams returns the parameters the simulation starts with
func DefaultParams() Params {
	return Params{
		BoxSize:           100,
		InteractionRadius: 40,
		RepulsionRatio:    0.3,
		Friction:          0.5,
		Multithreaded:     true,
		Workers:           DefaultWorkers,
		Boundary:          BoundaryWrap,
		ClampDampening:    0.5,
	}
}

// Option configures a System at construction
type Option func(*System)

// WithSeed makes particle placement and matrix randomisation reproducible
func WithSeed(seed int64) Option {
	return func(s *System) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithParams replaces the default parameters. BoxSize is taken from NewSystem's size argument.
func WithParams(p Params) Option {
	return func(s *System) {
		s.params = p
	}
}

// System keeps track of all the particles in the scene and advances them one tick at a time.
// It is owned by a single goroutine; mutators must only be called between ticks.
type System struct {
	particles   []Particle
	matrix      *ColorMatrix
	grid        *Grid
	params      Params
	applicators []ForceApplicator
	tickCount   uint64
	rng         *rand.Rand
}

// NewSystem creates numParticles particles spread uniformly over [-size, size]² with
// numColors colors assigned round-robin.
func NewSystem(numParticles, numColors int, size float64, opts ...Option) *System {
	s := &System{
		params: DefaultParams(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.params.BoxSize = size
	if s.params.Workers <= 0 {
		s.params.Workers = DefaultWorkers
	}

	s.matrix = NewColorMatrix(numColors)
	s.grid = NewGrid(s.params.BoxSize, s.params.InteractionRadius)
	s.particles = allocateParticles(nil, numParticles, s.matrix.NumColors(), s.params.BoxSize, s.rng)
	s.applicators = []ForceApplicator{NewColorForce(s.matrix), FrictionForce{}}
	return s
}

// Particles returns the live particle slice. Renderers must treat it as read-only and drop
// it before the next tick; force applicators may write NetForce. Use Snapshot to keep a copy.
func (s *System) Particles() []Particle { return s.particles }

// Snapshot copies the particles into dst, reusing its capacity, and returns it.
// The copy stays valid across ticks and mutators.
func (s *System) Snapshot(dst []Particle) []Particle {
	return append(dst[:0], s.particles...)
}

// NumParticles returns the size of the store
func (s *System) NumParticles() int { return len(s.particles) }

// ColorMatrix returns the matrix used by the default color force
func (s *System) ColorMatrix() *ColorMatrix { return s.matrix }

// Grid returns the spatial index, valid between partition and integrate
func (s *System) Grid() *Grid { return s.grid }

// Params returns a copy of the current parameters
func (s *System) Params() Params { return s.params }

// Rand returns the system's random source, shared with drivers that want reproducible runs
func (s *System) Rand() *rand.Rand { return s.rng }

// TickCount returns the number of ticks run so far
func (s *System) TickCount() uint64 { return s.tickCount }

// BoundingBoxSize returns S
func (s *System) BoundingBoxSize() float64 { return s.params.BoxSize }

// InteractionRadius returns Rmax
func (s *System) InteractionRadius() float64 { return s.params.InteractionRadius }

// SetNumParticles truncates or appends particles; survivors keep their slot and state.
// New particles are colored against the current matrix. A numColors different from the
// matrix resizes it and recolors every particle, as SetNumColors does.
func (s *System) SetNumParticles(n, numColors int) {
	s.particles = allocateParticles(s.particles, n, s.matrix.NumColors(), s.params.BoxSize, s.rng)
	if numColors != s.matrix.NumColors() {
		s.SetNumColors(numColors)
	}
}

// SetNumColors resizes the matrix and reassigns every particle's color round-robin.
func (s *System) SetNumColors(numColors int) {
	s.matrix.Resize(numColors)
	numColors = s.matrix.NumColors()
	for i := range s.particles {
		s.particles[i].Color = i % numColors
	}
}

// SetBoundingBoxSize changes S and reshapes the grid.
// Particles now outside the box are brought back by the next boundary pass.
func (s *System) SetBoundingBoxSize(size float64) {
	s.params.BoxSize = size
	s.grid.Reshape(s.params.BoxSize, s.params.InteractionRadius)
}

// SetInteractionRadius changes Rmax and reshapes the grid
func (s *System) SetInteractionRadius(radius float64) {
	s.params.InteractionRadius = radius
	s.grid.Reshape(s.params.BoxSize, s.params.InteractionRadius)
}

// SetRepulsionRatio sets beta, expected in (0, 1)
func (s *System) SetRepulsionRatio(beta float64) { s.params.RepulsionRatio = beta }

// SetFriction sets the damping coefficient mu
func (s *System) SetFriction(mu float64) { s.params.Friction = mu }

// SetMultithreaded toggles the parallel force pass
func (s *System) SetMultithreaded(on bool) { s.params.Multithreaded = on }

// IsMultithreaded reports whether the force pass may use workers
func (s *System) IsMultithreaded() bool { return s.params.Multithreaded }

// SetWorkers sets how many chunks the parallel force pass uses
func (s *System) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.params.Workers = n
}

// SetBoundary selects wrap or clamp for Tick
func (s *System) SetBoundary(b Boundary) { s.params.Boundary = b }

// SetClampDampening sets the velocity fraction kept by a clamp bounce
func (s *System) SetClampDampening(d float64) { s.params.ClampDampening = d }

// SetParticle places particle i at position with the given previous position,
// which sets its velocity to position - previous.
func (s *System) SetParticle(i int, position, previous mgl64.Vec2) {
	p := &s.particles[i]
	p.Position = position
	p.LastPosition = previous
}

// SetParticleColor changes the color of particle i
func (s *System) SetParticleColor(i, c int) {
	s.particles[i].Color = c
}

// Applicators returns the force pipeline run by Tick, in order
func (s *System) Applicators() []ForceApplicator { return s.applicators }

// SetApplicators replaces the force pipeline run by Tick
func (s *System) SetApplicators(applicators ...ForceApplicator) {
	s.applicators = applicators
}

// AddApplicator appends to the force pipeline
func (s *System) AddApplicator(a ForceApplicator) {
	s.applicators = append(s.applicators, a)
}

// Tick advances the simulation by dt: zero forces, partition, apply every force
// applicator in order, integrate, then wrap or clamp.
func (s *System) Tick(dt float64) {
	s.ZeroForces()
	s.PartitionParticles()
	for _, a := range s.applicators {
		a.ApplyForces(s, dt)
	}
	s.UpdatePositions(dt)
	if s.params.Boundary == BoundaryClamp {
		s.ClampPositions(s.params.ClampDampening)
	} else {
		s.WrapPositions()
	}
	s.tickCount++
}

// ZeroForces resets every accumulated force
func (s *System) ZeroForces() {
	for i := range s.particles {
		s.particles[i].NetForce = mgl64.Vec2{}
	}
}

// PartitionParticles refills the grid and refreshes every particle's cached cell
func (s *System) PartitionParticles() {
	s.grid.Clear()
	for i := range s.particles {
		p := &s.particles[i]
		p.Cell = s.grid.Insert(p.ID, p.Position)
	}
}
