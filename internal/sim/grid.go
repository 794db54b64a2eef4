package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Grid is a uniform partition of the [-size, size]² torus into cellsAcross² square cells.
// Cells are at least as wide as the interaction radius, so every interacting pair lies in
// the 3x3 block of cells around either particle.
type Grid struct {
	size        float64
	cellSize    float64
	cellsAcross int
	cells       [][]int // Particle ids per cell, index = cy*cellsAcross + cx
}

// NewGrid creates a grid shaped for the given box half-extent and interaction radius.
func NewGrid(size, radius float64) *Grid {
	g := &Grid{}
	g.Reshape(size, radius)
	return g
}

// Reshape recomputes the cell layout. Cells as close to the radius as possible, never smaller.
func (g *Grid) Reshape(size, radius float64) {
	across := 1
	if radius > 0 {
		across = int(2 * size / radius) // Truncate, so cells are slightly bigger than needed
	}
	if across < 1 {
		across = 1
	}

	g.size = size
	g.cellsAcross = across
	g.cellSize = 2 * size / float64(across)

	count := across * across
	if cap(g.cells) >= count {
		g.cells = g.cells[:count]
	} else {
		g.cells = make([][]int, count)
	}
	g.Clear()
}

// CellsAcross returns K, the number of cells per axis
func (g *Grid) CellsAcross() int { return g.cellsAcross }

// CellSize returns h, the side of one cell
func (g *Grid) CellSize() float64 { return g.cellSize }

// Clear empties every bucket while keeping their capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// CellCoords maps a position in [-size, size]² to its cell column and row.
// Row 0 is the top of the box (largest y).
func (g *Grid) CellCoords(p mgl64.Vec2) (int, int) {
	cx := int(math.Floor((p[0] + g.size) / g.cellSize))
	cy := int(math.Floor((g.size - p[1]) / g.cellSize))
	return clampCell(cx, g.cellsAcross), clampCell(cy, g.cellsAcross)
}

func clampCell(c, across int) int {
	if c < 0 {
		return 0
	}
	if c >= across {
		return across - 1
	}
	return c
}

// CellIndex returns the linear index of cell (cx, cy)
func (g *Grid) CellIndex(cx, cy int) int {
	return cy*g.cellsAcross + cx
}

// Insert places particle id into the cell covering position and returns that cell's index.
func (g *Grid) Insert(id int, p mgl64.Vec2) int {
	cell := g.CellIndex(g.CellCoords(p))
	g.cells[cell] = append(g.cells[cell], id)
	return cell
}

// Bucket returns the ids stored in a cell. The slice is owned by the grid.
func (g *Grid) Bucket(cell int) []int {
	return g.cells[cell]
}

// Neighbors writes the distinct cells of the wrapped 3x3 block around cell into out and
// returns how many were written. With fewer than three cells per axis the wrapped offsets
// alias, and duplicates are dropped so no bucket is visited twice.
func (g *Grid) Neighbors(cell int, out *[9]int) int {
	k := g.cellsAcross
	cx := cell % k
	cy := cell / k

	// Offsets added to the cell index to step in each direction, wrapping at the edges
	ld := -1
	if cx == 0 {
		ld = k - 1
	}
	rd := 1
	if cx == k-1 {
		rd = -(k - 1)
	}
	ud := -k
	if cy == 0 {
		ud = k * (k - 1)
	}
	dd := k
	if cy == k-1 {
		dd = -k * (k - 1)
	}

	out[0] = cell + ld + ud
	out[1] = cell + ud
	out[2] = cell + rd + ud
	out[3] = cell + ld
	out[4] = cell
	out[5] = cell + rd
	out[6] = cell + ld + dd
	out[7] = cell + dd
	out[8] = cell + rd + dd

	if k >= 3 {
		return 9
	}

	n := 0
	for i := 0; i < 9; i++ {
		dup := false
		for j := 0; j < n; j++ {
			if out[j] == out[i] {
				dup = true
				break
			}
		}
		if !dup {
			out[n] = out[i]
			n++
		}
	}
	return n
}
