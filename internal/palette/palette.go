// Package palette provides display colors for particle colors.
package palette

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/specks/internal/sim"
)

// Specks is the five-color palette the viewer starts with
var Specks = []color.RGBA{
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{255, 0, 255, 255},
	{128, 255, 204, 255},
	{204, 51, 128, 255},
}

// Hues returns n fully saturated colors evenly spaced around the hue circle
func Hues(n int) []color.RGBA {
	colors := make([]color.RGBA, n)
	for i := range colors {
		h := float64(i) / float64(n) * 360
		colors[i] = toRGBA(colorful.Hsv(h, 1, 1))
	}
	return colors
}

// For returns Specks when it has enough entries, otherwise an even hue palette
func For(n int) []color.RGBA {
	if n <= len(Specks) {
		return append([]color.RGBA(nil), Specks[:n]...)
	}
	return Hues(n)
}

// Apply sets the matrix display colors, cycling colors if there are fewer than the matrix needs
func Apply(m *sim.ColorMatrix, colors []color.RGBA) {
	if len(colors) == 0 {
		return
	}
	for i := 0; i < m.NumColors(); i++ {
		m.SetColor(i, colors[i%len(colors)])
	}
}

// Dim scales a color's value in HSV space, keeping alpha
func Dim(c color.RGBA, factor float64) color.RGBA {
	h, s, v := fromRGBA(c).Hsv()
	out := toRGBA(colorful.Hsv(h, s, v*factor))
	out.A = c.A
	return out
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

var (
	heatCold = colorful.Color{R: 0.05, G: 0.05, B: 0.25}
	heatHot  = colorful.Color{R: 1, G: 0.35, B: 0}
)

// Heat maps t in [0, 1] onto a cold-to-hot ramp blended in HCL space
func Heat(t float64) color.RGBA {
	t = min(max(t, 0), 1)
	return toRGBA(heatCold.BlendHcl(heatHot, t))
}
