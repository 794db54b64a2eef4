package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/specks/internal/palette"
	"github.com/olivierh59500/specks/internal/record"
	"github.com/olivierh59500/specks/internal/sim"
)

// ParticleSize is the particle radius in pixels at zoom 1
const ParticleSize = 1.5

// Draw is called each frame by Ebitengine
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(record.Background)

	size := v.system.BoundingBoxSize()
	minX, maxX, minY, maxY := v.camera.VisibleTiles(size)
	if v.system.Params().Boundary == sim.BoundaryClamp {
		// Only a torus repeats
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}

	for tx := minX; tx <= maxX; tx++ {
		for ty := minY; ty <= maxY; ty++ {
			offset := mgl64.Vec2{float64(tx) * 2 * size, float64(ty) * 2 * size}
			v.drawBox(screen, offset, size)
			switch v.visMode {
			case VisDensity:
				v.drawDensity(screen, offset, size)
			case VisTrails:
				v.drawTrails(screen, offset, size)
			default:
				v.drawParticles(screen, offset)
			}
		}
	}

	ebitenutil.DebugPrint(screen, v.hud())
}

func (v *Viewer) drawBox(screen *ebiten.Image, offset mgl64.Vec2, size float64) {
	x, y := v.camera.ToScreen(offset.Add(mgl64.Vec2{-size, size}))
	side := float32(2 * size * v.camera.Scale())
	vector.DrawFilledRect(screen, float32(x), float32(y), side, side, record.BoxColor, false)
}

func (v *Viewer) visible(x, y, margin float64) bool {
	return x >= -margin && x <= float64(v.width)+margin && y >= -margin && y <= float64(v.height)+margin
}

func (v *Viewer) drawParticles(screen *ebiten.Image, offset mgl64.Vec2) {
	m := v.system.ColorMatrix()
	radius := ParticleSize * v.camera.Zoom
	particles := v.system.Particles()
	for i := range particles {
		p := &particles[i]
		x, y := v.camera.ToScreen(p.Position.Add(offset))
		if !v.visible(x, y, radius) {
			continue
		}
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(radius), m.Color(p.Color), true)
	}
}

// drawDensity shades every grid cell by how many particles it held at the last partition
func (v *Viewer) drawDensity(screen *ebiten.Image, offset mgl64.Vec2, size float64) {
	g := v.system.Grid()
	k := g.CellsAcross()
	h := g.CellSize()

	peak := 1
	for cell := 0; cell < k*k; cell++ {
		peak = max(peak, len(g.Bucket(cell)))
	}

	side := float32(h * v.camera.Scale())
	for cy := 0; cy < k; cy++ {
		for cx := 0; cx < k; cx++ {
			// Row 0 is the top of the box
			corner := offset.Add(mgl64.Vec2{-size + float64(cx)*h, size - float64(cy)*h})
			x, y := v.camera.ToScreen(corner)
			if !v.visible(x+float64(side)/2, y+float64(side)/2, float64(side)) {
				continue
			}
			n := len(g.Bucket(g.CellIndex(cx, cy)))
			c := palette.Heat(float64(n) / float64(peak))
			vector.DrawFilledRect(screen, float32(x), float32(y), side, side, c, false)
		}
	}
}

func (v *Viewer) drawTrails(screen *ebiten.Image, offset mgl64.Vec2, size float64) {
	m := v.system.ColorMatrix()
	particles := v.system.Particles()
	for i := range particles {
		trail := v.trails.Of(i)
		if len(trail) < 2 {
			continue
		}
		c := m.Color(particles[i].Color)
		for j := 1; j < len(trail); j++ {
			// A wrap teleport is not motion
			if trail[j].Sub(trail[j-1]).Len() > size {
				continue
			}
			x0, y0 := v.camera.ToScreen(trail[j-1].Add(offset))
			x1, y1 := v.camera.ToScreen(trail[j].Add(offset))
			if !v.visible(x0, y0, 1) && !v.visible(x1, y1, 1) {
				continue
			}
			faded := palette.Dim(c, float64(j)/float64(len(trail)))
			vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, faded, true)
		}
	}
}

// wrapPoint folds a world point from any tile back into [-size, size)²
func wrapPoint(p mgl64.Vec2, size float64) mgl64.Vec2 {
	fold := func(x float64) float64 {
		x = math.Mod(x+size, 2*size)
		if x < 0 {
			x += 2 * size
		}
		return x - size
	}
	return mgl64.Vec2{fold(p[0]), fold(p[1])}
}
