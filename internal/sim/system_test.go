package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystem_Initialisation(t *testing.T) {
	s := NewSystem(50, 4, 20, WithSeed(5))

	require.Equal(t, 50, s.NumParticles())
	for i, p := range s.Particles() {
		assert.Equal(t, i, p.ID)
		assert.Equal(t, i%4, p.Color)
		assert.Equal(t, p.Position, p.LastPosition)
		assert.Equal(t, mgl64.Vec2{}, p.NetForce)
		assert.True(t, p.Position[0] >= -20 && p.Position[0] <= 20)
		assert.True(t, p.Position[1] >= -20 && p.Position[1] <= 20)
	}
	assert.Equal(t, 4, s.ColorMatrix().NumColors())
	assert.Equal(t, 20.0, s.BoundingBoxSize())
	assert.Len(t, s.Applicators(), 2)
}

func TestNewSystem_Empty(t *testing.T) {
	s := NewSystem(0, 3, 10)
	s.Tick(1.0 / 60)
	assert.Equal(t, 0, s.NumParticles())
}

func TestSetNumParticles_PreservesPrefix(t *testing.T) {
	s := NewSystem(300, 3, 50, WithSeed(9))
	s.ColorMatrix().Randomize(s.Rand())
	for i := 0; i < 5; i++ {
		s.Tick(1.0 / 60)
	}

	before := s.Snapshot(nil)
	s.SetNumParticles(120, 3)
	require.Equal(t, 120, s.NumParticles())
	assert.Equal(t, before[:120], s.Particles())

	s.SetNumParticles(200, 3)
	require.Equal(t, 200, s.NumParticles())
	assert.Equal(t, before[:120], s.Particles()[:120])
	for i := 120; i < 200; i++ {
		p := s.Particles()[i]
		assert.Equal(t, i, p.ID)
		assert.Equal(t, i%3, p.Color)
		assert.Equal(t, p.Position, p.LastPosition)
	}

	// Ticking after a resize only touches the grid through current ids
	s.Tick(1.0 / 60)
}

func TestSetNumParticles_ColorCountFollowsMatrix(t *testing.T) {
	s := NewSystem(10, 2, 50, WithSeed(6))
	s.SetNumParticles(20, 4)
	require.Equal(t, 4, s.ColorMatrix().NumColors())
	for i, p := range s.Particles() {
		assert.Equal(t, i%4, p.Color)
	}
	s.Tick(1.0 / 60)

	s.SetNumParticles(25, 1)
	require.Equal(t, 1, s.ColorMatrix().NumColors())
	for _, p := range s.Particles() {
		assert.Zero(t, p.Color)
	}
	s.Tick(1.0 / 60)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	s := NewSystem(20, 2, 50, WithSeed(8))
	buf := make([]Particle, 0, 32)
	snap := s.Snapshot(buf)
	require.Equal(t, s.Particles(), snap)
	assert.Equal(t, cap(buf), cap(snap))

	s.Tick(1.0 / 60)
	s.SetParticle(0, mgl64.Vec2{1, 2}, mgl64.Vec2{1, 2})
	assert.NotEqual(t, s.Particles()[0].Position, snap[0].Position)

	snap = s.Snapshot(snap)
	assert.Equal(t, s.Particles(), snap)
}

func TestSetNumColors_Recolors(t *testing.T) {
	s := NewSystem(10, 5, 50, WithSeed(2))
	s.ColorMatrix().SetAttraction(1, 1, -0.7)
	s.SetNumColors(2)

	assert.Equal(t, 2, s.ColorMatrix().NumColors())
	assert.Equal(t, -0.7, s.ColorMatrix().Attraction(1, 1))
	for i, p := range s.Particles() {
		assert.Equal(t, i%2, p.Color)
	}
	s.Tick(1.0 / 60)
}

func TestSetters_ReshapeGrid(t *testing.T) {
	s := NewSystem(10, 1, 100)
	assert.Equal(t, 5, s.Grid().CellsAcross())

	s.SetInteractionRadius(30)
	assert.Equal(t, 6, s.Grid().CellsAcross())
	assert.Equal(t, 30.0, s.InteractionRadius())

	s.SetBoundingBoxSize(15)
	assert.Equal(t, 1, s.Grid().CellsAcross())

	s.SetWorkers(0)
	assert.Equal(t, 1, s.Params().Workers)
	s.SetMultithreaded(false)
	assert.False(t, s.IsMultithreaded())
}

func TestSetBoundingBoxSize_ShrinkBringsParticlesBack(t *testing.T) {
	s := NewSystem(200, 2, 100, WithSeed(4))
	s.SetBoundingBoxSize(20)
	s.Tick(1.0 / 60)
	for _, p := range s.Particles() {
		assert.True(t, p.Position[0] >= -20 && p.Position[0] <= 20)
		assert.True(t, p.Position[1] >= -20 && p.Position[1] <= 20)
	}
}

func runSeeded(seed int64, workers int, multithreaded bool, ticks int) []Particle {
	p := DefaultParams()
	p.Workers = workers
	p.Multithreaded = multithreaded
	p.InteractionRadius = 15
	s := NewSystem(1500, 4, 100, WithSeed(seed), WithParams(p))
	s.ColorMatrix().Randomize(s.Rand())
	for i := 0; i < ticks; i++ {
		s.Tick(1.0 / 60)
	}
	return s.Snapshot(nil)
}

func TestTick_DeterministicSingleThreaded(t *testing.T) {
	a := runSeeded(42, 1, false, 40)
	b := runSeeded(42, 1, false, 40)
	assert.Equal(t, a, b)
}

func TestTick_ParallelMatchesSequential(t *testing.T) {
	seq := runSeeded(17, 1, false, 1)
	par := runSeeded(17, 8, true, 1)
	require.Len(t, par, len(seq))

	// Chunking does not change the order each particle sums its neighbours in
	for i := range seq {
		assert.InDelta(t, seq[i].Position[0], par[i].Position[0], 1e-12)
		assert.InDelta(t, seq[i].Position[1], par[i].Position[1], 1e-12)
	}

	par = runSeeded(17, 8, true, 20)
	for _, p := range par {
		require.True(t, p.Position[0] >= -100 && p.Position[0] <= 100)
		require.True(t, p.Position[1] >= -100 && p.Position[1] <= 100)
	}
}

func TestChunkBounds(t *testing.T) {
	for _, tt := range []struct{ n, workers int }{{100, 16}, {1000, 16}, {101, 8}, {7, 3}, {16, 16}} {
		chunks := chunkBounds(tt.n, tt.workers)
		require.NotEmpty(t, chunks)
		assert.LessOrEqual(t, len(chunks), tt.workers)
		assert.Equal(t, 0, chunks[0][0])
		assert.Equal(t, tt.n, chunks[len(chunks)-1][1])
		for i := 1; i < len(chunks); i++ {
			assert.Equal(t, chunks[i-1][1], chunks[i][0], "contiguous")
		}
	}
}

func twoBody(attraction float64) *System {
	p := DefaultParams()
	p.InteractionRadius = 10
	p.RepulsionRatio = 0.3
	p.Friction = 0
	s := NewSystem(2, 1, 50, WithSeed(1), WithParams(p))
	s.ColorMatrix().SetAttraction(0, 0, attraction)
	s.SetParticle(0, mgl64.Vec2{-2, 0}, mgl64.Vec2{-2, 0})
	s.SetParticle(1, mgl64.Vec2{2, 0}, mgl64.Vec2{2, 0})
	return s
}

func separation(s *System) float64 {
	ps := s.Particles()
	return WrappedDelta(ps[0].Position, ps[1].Position, s.BoundingBoxSize()).Len()
}

func TestScenario_TwoBodyOscillates(t *testing.T) {
	s := twoBody(1)
	lowest, highest := separation(s), separation(s)
	for i := 0; i < 1000; i++ {
		s.Tick(1.0 / 60)
		d := separation(s)
		require.LessOrEqual(t, d, 10.0, "tick %d", i)
		require.Greater(t, d, 0.0, "tick %d", i)
		lowest = min(lowest, d)
		highest = max(highest, d)
	}
	assert.Less(t, lowest, 3.5, "pulled into the repulsion zone")
	assert.LessOrEqual(t, highest, 4.01, "no energy gained")
}

func TestScenario_NegativeAttractionSeparates(t *testing.T) {
	s := twoBody(-1)
	prev := separation(s)
	ticks := 0
	for prev <= 10 {
		require.Less(t, ticks, 2000, "never left the interaction radius")
		s.Tick(1.0 / 60)
		d := separation(s)
		require.Greater(t, d, prev, "tick %d", ticks)
		prev = d
		ticks++
	}

	// Out of range: no force, constant velocity
	v := s.Particles()[0].Velocity()
	for i := 0; i < 10; i++ {
		s.Tick(1.0 / 60)
		for _, p := range s.Particles() {
			assert.Equal(t, mgl64.Vec2{}, p.NetForce)
		}
	}
	got := s.Particles()[0].Velocity()
	assert.InDelta(t, v[0], got[0], 1e-9)
	assert.InDelta(t, v[1], got[1], 1e-9)
}

func TestScenario_FrictionSettles(t *testing.T) {
	s := twoBody(-1)
	s.SetFriction(0.5)
	for i := 0; i < 3000; i++ {
		s.Tick(1.0 / 60)
	}
	for _, p := range s.Particles() {
		assert.InDelta(t, 0, p.Velocity().Len(), 1e-3)
	}
}

func BenchmarkTick(b *testing.B) {
	for _, mt := range []bool{false, true} {
		name := "sequential"
		if mt {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			p := DefaultParams()
			p.Multithreaded = mt
			p.InteractionRadius = 20
			s := NewSystem(5000, 5, 200, WithSeed(1), WithParams(p))
			s.ColorMatrix().Randomize(s.Rand())
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Tick(1.0 / 60)
			}
		})
	}
}
