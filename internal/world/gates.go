package world

import "github.com/vovakirdan/latte-escape/internal/core"

// Gates is the dynamic open/closed overlay for gated cells. It is written by
// puzzle logic and read on every collision and visibility query; the static
// grid underneath is never touched.
type Gates struct {
	open map[core.Coord]bool
}

// NewGates creates an overlay with every gate closed.
func NewGates() *Gates {
	return &Gates{open: make(map[core.Coord]bool)}
}

// SetOpen sets the state of the gate at (x, y).
func (g *Gates) SetOpen(x, y int, open bool) {
	g.open[core.C(x, y)] = open
}

// IsOpen reports whether the gate at (x, y) is open. Cells never written are
// closed.
func (g *Gates) IsOpen(x, y int) bool {
	return g.open[core.C(x, y)]
}

// Toggle flips the gate at (x, y) and returns the new state.
func (g *Gates) Toggle(x, y int) bool {
	c := core.C(x, y)
	g.open[c] = !g.open[c]
	return g.open[c]
}

// Snapshot returns a copy of every written gate state.
func (g *Gates) Snapshot() map[core.Coord]bool {
	out := make(map[core.Coord]bool, len(g.open))
	for c, v := range g.open {
		out[c] = v
	}
	return out
}

// CellState is the effective state of a cell: its static tag plus, for gated
// cells, the current overlay value.
type CellState struct {
	Tag  Tag
	Open bool
}

// Blocks reports whether an entity may not occupy the cell.
func (s CellState) Blocks() bool {
	switch s.Tag {
	case TagBlocking:
		return true
	case TagGated:
		return !s.Open
	default:
		return false
	}
}

// Passability answers collision queries for the resolver.
type Passability interface {
	Blocks(c core.Coord) bool
}

// Map joins a room's static grid with its gate overlay.
type Map struct {
	Grid  *Grid
	Gates *Gates
}

// NewMap creates a map over grid with a fresh, all-closed overlay.
func NewMap(grid *Grid) *Map {
	return &Map{Grid: grid, Gates: NewGates()}
}

// Cell returns the effective state of (x, y).
func (m *Map) Cell(x, y int) CellState {
	tag := m.Grid.Classify(x, y)
	if tag != TagGated {
		return CellState{Tag: tag}
	}
	return CellState{Tag: tag, Open: m.Gates.IsOpen(x, y)}
}

// Blocks implements Passability.
func (m *Map) Blocks(c core.Coord) bool {
	return m.Cell(c.X, c.Y).Blocks()
}
