package world

import (
	"math"

	"github.com/vovakirdan/latte-escape/internal/core"
)

// DefaultFogRadius lights the full 3x3 neighbourhood around the observer with
// some margin over the corner diagonal (about 1.414 cells).
const DefaultFogRadius = 1.75

// Fog computes an instantaneous circular visibility mask. Nothing is
// remembered between calls: a cell is either inside the radius now or dark.
type Fog struct {
	Radius  float64 // in cells
	Aspect  float64 // on-screen cell width / height; <= 0 means square
	Occlude bool    // blocking cells and closed gates cast shadows
}

// Visibility returns 1 if cell is visible from observer and 0 otherwise.
// observer is a continuous position in cell units.
func (f Fog) Visibility(cell core.Coord, observer core.Vec, m Passability) float64 {
	aspect := f.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	radius := f.Radius
	if radius <= 0 {
		radius = DefaultFogRadius
	}

	dx := (float64(cell.X) + 0.5 - observer.X) / aspect
	dy := float64(cell.Y) + 0.5 - observer.Y
	if math.Hypot(dx, dy) > radius {
		return 0
	}

	if f.Occlude && m != nil {
		from := core.C(int(math.Floor(observer.X)), int(math.Floor(observer.Y)))
		if !lineClear(from, cell, m) {
			return 0
		}
	}
	return 1
}

// Mask returns the visibility of every cell of the map, indexed [row][col]
// with row 0 at the bottom.
func (f Fog) Mask(m *Map, observer core.Vec) [][]float64 {
	w, h := m.Grid.Width(), m.Grid.Height()
	mask := make([][]float64, h)
	for y := 0; y < h; y++ {
		mask[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			mask[y][x] = f.Visibility(core.C(x, y), observer, m)
		}
	}
	return mask
}

// lineClear walks the cells between from and to and reports whether none of
// the cells strictly between them blocks.
func lineClear(from, to core.Coord, m Passability) bool {
	x, y := from.X, from.Y
	dx := core.Abs(to.X - x)
	dy := -core.Abs(to.Y - y)
	sx, sy := 1, 1
	if to.X < x {
		sx = -1
	}
	if to.Y < y {
		sy = -1
	}
	err := dx + dy

	for {
		c := core.C(x, y)
		if c != from && c != to && m.Blocks(c) {
			return false
		}
		if c == to {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}
