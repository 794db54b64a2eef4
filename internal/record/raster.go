// Package record renders snapshots off-screen for video capture and writes run charts.
package record

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/olivierh59500/specks/internal/sim"
)

// Background is the color outside the simulation box
var Background = color.RGBA{51, 51, 64, 255}

// BoxColor fills the simulation box
var BoxColor = color.RGBA{26, 26, 26, 255}

// Rasterizer draws particles into an RGBA image with the box fitted to the shorter side
type Rasterizer struct {
	Width, Height int
	PointSize     int // Side of the square drawn per particle, in pixels
}

// NewRasterizer creates a rasterizer for frames of the given size
func NewRasterizer(width, height int) *Rasterizer {
	return &Rasterizer{Width: width, Height: height, PointSize: 2}
}

// Render draws the system into a new image
func (r *Rasterizer) Render(s *sim.System) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	r.RenderInto(img, s)
	return img
}

// RenderInto clears img and draws the box and every particle into it
func (r *Rasterizer) RenderInto(img *image.RGBA, s *sim.System) {
	draw.Draw(img, img.Bounds(), &image.Uniform{Background}, image.Point{}, draw.Src)

	size := s.BoundingBoxSize()
	scale, ox, oy := r.fit(size)
	box := image.Rect(int(ox), int(oy), int(ox+2*size*scale), int(oy+2*size*scale))
	draw.Draw(img, box, &image.Uniform{BoxColor}, image.Point{}, draw.Src)

	m := s.ColorMatrix()
	half := r.PointSize / 2
	for _, p := range s.Particles() {
		// World y grows upward, image y grows downward
		px := int(ox + (p.Position[0]+size)*scale)
		py := int(oy + (size-p.Position[1])*scale)
		c := color.RGBA{255, 255, 255, 255}
		if p.Color >= 0 && p.Color < m.NumColors() {
			c = m.Color(p.Color)
		}
		rect := image.Rect(px-half, py-half, px-half+r.PointSize, py-half+r.PointSize)
		draw.Draw(img, rect.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
	}
}

// fit returns the world-to-pixel scale and the pixel offset of the box's top-left corner
func (r *Rasterizer) fit(size float64) (scale, ox, oy float64) {
	side := r.Width
	if r.Height < side {
		side = r.Height
	}
	scale = float64(side) / (2 * size)
	ox = (float64(r.Width) - 2*size*scale) / 2
	oy = (float64(r.Height) - 2*size*scale) / 2
	return scale, ox, oy
}
