package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/olivierh59500/specks/internal/config"
	"github.com/olivierh59500/specks/internal/forces"
	"github.com/olivierh59500/specks/internal/sim"
	"github.com/olivierh59500/specks/internal/stats"
)

// Viewer constants
const (
	EvolutionPeriod = 1000 // Ticks between matrix mutations in evolution mode
	MutationSigma   = 0.1
	ZoomStep        = 0.1
	TrailLength     = 10
	SampleEvery     = 10 // Ticks between HUD statistics samples
	AttractRadius   = 30.0
	AttractStrength = 20.0

	RadiusStep   = 5.0
	MinRadius    = 5.0 // Radius ranges over [MinRadius, box size / 2]
	BoxStep      = 10.0
	MaxBoxSize   = 500.0 // Box size ranges over [radius, MaxBoxSize]
	ParticleStep = 100
)

// VisMode selects how the particles are drawn
type VisMode int

const (
	VisParticles VisMode = iota
	VisDensity
	VisTrails
	numVisModes
)

func (m VisMode) String() string {
	switch m {
	case VisDensity:
		return "density"
	case VisTrails:
		return "trails"
	default:
		return "particles"
	}
}

// Viewer is the ebiten game driving a sim.System
type Viewer struct {
	system    *sim.System
	cfg       config.Config
	preset    string
	camera    *Camera
	width     int
	height    int
	dt        float64
	paused    bool
	evolution bool
	visMode   VisMode

	base      []sim.ForceApplicator // Color and friction forces
	flow      *forces.Flow
	flowOn    bool
	attractor *forces.Attractor

	trails  *Trails
	history *stats.History
	prevMX  float64
	prevMY  float64
}

// NewViewer wraps a system built from cfg. flow is the flow field cfg enabled, or nil.
func NewViewer(s *sim.System, flow *forces.Flow, cfg config.Config, preset string, width, height int) *Viewer {
	v := &Viewer{
		system:    s,
		cfg:       cfg,
		preset:    preset,
		camera:    NewCamera(width, height, s.BoundingBoxSize()),
		width:     width,
		height:    height,
		dt:        cfg.Timestep(),
		flow:      flow,
		flowOn:    flow != nil,
		attractor: &forces.Attractor{Radius: AttractRadius, Strength: AttractStrength},
		trails:    NewTrails(TrailLength),
		history:   stats.NewHistory(1),
	}
	for _, a := range s.Applicators() {
		if flow != nil && a == sim.ForceApplicator(flow) {
			continue
		}
		v.base = append(v.base, a)
	}
	v.rebuildPipeline()
	v.history.Add(stats.Measure(s, v.dt))
	return v
}

// rebuildPipeline installs the base forces followed by the optional drivers' forces
func (v *Viewer) rebuildPipeline() {
	applicators := append([]sim.ForceApplicator(nil), v.base...)
	if v.flowOn && v.flow != nil {
		applicators = append(applicators, v.flow)
	}
	applicators = append(applicators, v.attractor)
	v.system.SetApplicators(applicators...)
}

// Update is called each tick by Ebitengine
func (v *Viewer) Update() error {
	v.handleInput()

	if v.paused {
		return nil
	}

	v.system.Tick(v.dt)
	tick := v.system.TickCount()

	if v.visMode == VisTrails {
		v.trails.Record(v.system.Particles())
	}
	if v.evolution && tick%EvolutionPeriod == 0 {
		v.system.ColorMatrix().Mutate(v.system.Rand(), MutationSigma)
	}
	if tick%SampleEvery == 0 {
		v.history.Add(stats.Measure(v.system, v.dt))
	}
	return nil
}

// Layout returns the screen size
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.camera.Resize(v.width, v.height, v.system.BoundingBoxSize())
	}
	return v.width, v.height
}

// handleInput processes keyboard and mouse input
func (v *Viewer) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.system.ColorMatrix().Randomize(v.system.Rand())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		v.evolution = !v.evolution
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		v.system.SetMultithreaded(!v.system.IsMultithreaded())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		if v.system.Params().Boundary == sim.BoundaryWrap {
			v.system.SetBoundary(sim.BoundaryClamp)
		} else {
			v.system.SetBoundary(sim.BoundaryWrap)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		v.toggleFlow()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.visMode = (v.visMode + 1) % numVisModes
		v.trails.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.savePreset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		v.loadPreset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		v.adjustRadius(-RadiusStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		v.adjustRadius(RadiusStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		v.adjustBoxSize(-BoxStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		v.adjustBoxSize(BoxStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		v.adjustParticles(-ParticleStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		v.adjustParticles(ParticleStep)
	}

	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)

	// Zoom
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		v.camera.ZoomBy(wheelY*ZoomStep, fx, fy)
	}

	// Pan (drag)
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		v.camera.Pan(fx-v.prevMX, fy-v.prevMY)
	}
	v.prevMX, v.prevMY = fx, fy

	// Attract, or repel with shift held
	v.attractor.Active = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if v.attractor.Active {
		v.attractor.Point = wrapPoint(v.camera.ToWorld(fx, fy), v.system.BoundingBoxSize())
		v.attractor.Strength = AttractStrength
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			v.attractor.Strength = -AttractStrength
		}
	}
}

// adjustRadius changes the interaction radius, which reshapes the grid
func (v *Viewer) adjustRadius(delta float64) {
	upper := max(v.system.BoundingBoxSize()/2, MinRadius)
	v.system.SetInteractionRadius(min(max(v.system.InteractionRadius()+delta, MinRadius), upper))
}

// adjustBoxSize changes the box half-extent and refits the camera to it
func (v *Viewer) adjustBoxSize(delta float64) {
	size := min(max(v.system.BoundingBoxSize()+delta, v.system.InteractionRadius()), MaxBoxSize)
	v.system.SetBoundingBoxSize(size)
	v.camera.Resize(v.width, v.height, size)
	v.trails.Reset()
}

// adjustParticles adds or removes particles at the end of the store
func (v *Viewer) adjustParticles(delta int) {
	n := max(v.system.NumParticles()+delta, 0)
	v.system.SetNumParticles(n, v.system.ColorMatrix().NumColors())
	v.trails.Reset()
}

func (v *Viewer) toggleFlow() {
	if v.flow == nil {
		f := v.cfg.Flow
		v.flow = forces.NewFlow(v.system.Rand().Int63(), f.Strength, f.Scale, f.Speed)
	}
	v.flowOn = !v.flowOn
	v.rebuildPipeline()
}

func (v *Viewer) savePreset() {
	if err := config.SaveMatrix(v.preset, v.system.ColorMatrix()); err != nil {
		log.Printf("save preset: %v", err)
		return
	}
	log.Printf("saved color matrix to %s", v.preset)
}

func (v *Viewer) loadPreset() {
	m := v.system.ColorMatrix()
	before := m.NumColors()
	if err := config.LoadMatrix(v.preset, m); err != nil {
		log.Printf("load preset: %v", err)
		return
	}
	// Particle colors must stay inside the resized matrix
	if m.NumColors() != before {
		v.system.SetNumColors(m.NumColors())
	}
	log.Printf("loaded color matrix from %s", v.preset)
}

// hud is the status text drawn over the scene
func (v *Viewer) hud() string {
	last, _ := v.history.Last()
	p := v.system.Params()
	state := "running"
	if v.paused {
		state = "paused"
	}
	return fmt.Sprintf(
		"TPS %.0f  FPS %.0f  %s\nparticles %d  colors %d  tick %d  box %.0f  radius %.0f\n"+
			"kinetic energy %.2f  mean speed %.2f\n"+
			"boundary %s  threads %v  flow %v  evolution %v  view %s",
		ebiten.ActualTPS(), ebiten.ActualFPS(), state,
		v.system.NumParticles(), v.system.ColorMatrix().NumColors(), v.system.TickCount(),
		p.BoxSize, p.InteractionRadius,
		last.KineticEnergy, last.MeanSpeed,
		p.Boundary, p.Multithreaded, v.flowOn, v.evolution, v.visMode,
	)
}
