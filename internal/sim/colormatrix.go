package sim

import (
	"image/color"
	"math/rand"
)

// ColorMatrix holds the display tint of every color and the attraction scale between
// every ordered pair of colors.
// Scale(i, j) is what a particle of color i feels from a neighbour of color j; the
// matrix is not symmetric.
type ColorMatrix struct {
	colors []color.RGBA
	scales []float64 // Row-major, numColors * numColors
}

// NewColorMatrix creates a matrix with white colors, self-attraction of 1 and a weak
// attraction of 0.2 toward the next color.
func NewColorMatrix(numColors int) *ColorMatrix {
	if numColors < 1 {
		numColors = 1
	}
	m := &ColorMatrix{
		colors: make([]color.RGBA, numColors),
		scales: make([]float64, numColors*numColors),
	}
	for i := range m.colors {
		m.colors[i] = color.RGBA{255, 255, 255, 255}
	}
	for i := 0; i < numColors; i++ {
		for j := 0; j < numColors; j++ {
			m.scales[i*numColors+j] = defaultScale(i, j, numColors)
		}
	}
	return m
}

func defaultScale(i, j, numColors int) float64 {
	switch {
	case i == j:
		return 1.0
	case (i+1)%numColors == j:
		return 0.2
	default:
		return 0.0
	}
}

// NumColors returns the number of colors
func (m *ColorMatrix) NumColors() int {
	return len(m.colors)
}

// Color returns the display color of index i.
func (m *ColorMatrix) Color(i int) color.RGBA {
	return m.colors[i]
}

// SetColor sets the display color of index i.
func (m *ColorMatrix) SetColor(i int, c color.RGBA) {
	m.colors[i] = c
}

// Attraction returns A[primary, other].
func (m *ColorMatrix) Attraction(primary, other int) float64 {
	return m.scales[primary*len(m.colors)+other]
}

// SetAttraction sets A[primary, other]. Values are expected in [-1, 1].
func (m *ColorMatrix) SetAttraction(primary, other int, scale float64) {
	m.scales[primary*len(m.colors)+other] = scale
}

// Randomize fills the whole matrix with independent samples from [-1, 1]
func (m *ColorMatrix) Randomize(rng *rand.Rand) {
	for i := range m.scales {
		m.scales[i] = rng.Float64()*2 - 1
	}
}

// Mutate drifts every entry by a gaussian step of the given sigma, clamped to [-1, 1]
func (m *ColorMatrix) Mutate(rng *rand.Rand, sigma float64) {
	for i := range m.scales {
		m.scales[i] = clampUnit(m.scales[i] + rng.NormFloat64()*sigma)
	}
}

// Resize changes the number of colors. The overlapping block of scales and colors is kept;
// new entries get the constructor defaults.
func (m *ColorMatrix) Resize(numColors int) {
	if numColors < 1 {
		numColors = 1
	}
	old := len(m.colors)
	if numColors == old {
		return
	}

	colors := make([]color.RGBA, numColors)
	scales := make([]float64, numColors*numColors)
	for i := 0; i < numColors; i++ {
		if i < old {
			colors[i] = m.colors[i]
		} else {
			colors[i] = color.RGBA{255, 255, 255, 255}
		}
		for j := 0; j < numColors; j++ {
			if i < old && j < old {
				scales[i*numColors+j] = m.scales[i*old+j]
			} else {
				scales[i*numColors+j] = defaultScale(i, j, numColors)
			}
		}
	}
	m.colors = colors
	m.scales = scales
}

// Scales returns a copy of the matrix as rows, for persistence.
func (m *ColorMatrix) Scales() [][]float64 {
	n := len(m.colors)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		copy(rows[i], m.scales[i*n:(i+1)*n])
	}
	return rows
}

// SetScales replaces the matrix from rows. The number of colors follows len(rows); rows are
// expected to be square. Values are clamped to [-1, 1].
func (m *ColorMatrix) SetScales(rows [][]float64) {
	m.Resize(len(rows))
	n := len(m.colors)
	for i := 0; i < n && i < len(rows); i++ {
		for j := 0; j < n && j < len(rows[i]); j++ {
			m.scales[i*n+j] = clampUnit(rows[i][j])
		}
	}
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
