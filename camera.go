package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinZoom limits zooming out so tiling stays bounded
const MinZoom = 0.1

// Camera maps world coordinates (y up, box centered on the origin) to screen pixels
type Camera struct {
	Center mgl64.Vec2 // World point shown at the middle of the screen
	Zoom   float64    // Multiplier over the fit-to-screen scale

	width, height float64
	fit           float64 // Pixels per world unit at Zoom 1
}

// NewCamera centers the box [-size, size]² on a screen of the given size
func NewCamera(width, height int, size float64) *Camera {
	c := &Camera{Zoom: 1}
	c.Resize(width, height, size)
	return c
}

// Resize refits the box after the screen or box size changed
func (c *Camera) Resize(width, height int, size float64) {
	c.width, c.height = float64(width), float64(height)
	c.fit = math.Min(c.width, c.height) / (2 * size)
}

// Scale is pixels per world unit
func (c *Camera) Scale() float64 { return c.fit * c.Zoom }

// ToScreen converts a world point to pixels
func (c *Camera) ToScreen(p mgl64.Vec2) (float64, float64) {
	s := c.Scale()
	return c.width/2 + (p[0]-c.Center[0])*s, c.height/2 - (p[1]-c.Center[1])*s
}

// ToWorld converts pixels to a world point
func (c *Camera) ToWorld(x, y float64) mgl64.Vec2 {
	s := c.Scale()
	return mgl64.Vec2{c.Center[0] + (x-c.width/2)/s, c.Center[1] - (y-c.height/2)/s}
}

// Pan drags the view by a screen-space delta
func (c *Camera) Pan(dx, dy float64) {
	s := c.Scale()
	c.Center[0] -= dx / s
	c.Center[1] += dy / s
}

// ZoomBy changes the zoom keeping the world point under (x, y) fixed
func (c *Camera) ZoomBy(step, x, y float64) {
	anchor := c.ToWorld(x, y)
	c.Zoom = math.Max(c.Zoom+step, MinZoom)
	after := c.ToWorld(x, y)
	c.Center = c.Center.Add(anchor.Sub(after))
}

// VisibleTiles returns the inclusive range of box copies, each 2·size wide, that
// intersect the screen. Tile (0, 0) is the box itself.
func (c *Camera) VisibleTiles(size float64) (minX, maxX, minY, maxY int) {
	lo := c.ToWorld(0, c.height)
	hi := c.ToWorld(c.width, 0)
	tile := func(v float64) int { return int(math.Floor((v + size) / (2 * size))) }
	return tile(lo[0]), tile(hi[0]), tile(lo[1]), tile(hi[1])
}
