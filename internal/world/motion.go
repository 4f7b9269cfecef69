package world

import (
	"math"
	"strings"

	"github.com/vovakirdan/latte-escape/internal/core"
)

// Direction is one of the four cardinal facings.
type Direction uint8

const (
	DirDown Direction = iota
	DirUp
	DirLeft
	DirRight
)

// String returns the lowercase name used in sprite keys.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "down"
	}
}

// ParseDirection converts a direction name. Unknown names return DirDown and false.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	}
	return DirDown, false
}

// Intent is the per-tick set of held directional keys.
type Intent struct {
	Up, Down, Left, Right bool
}

// IntentFromFrame extracts the directional part of an input frame.
func IntentFromFrame(f core.InputFrame) Intent {
	return Intent{
		Up:    f.Has(core.ActionUp),
		Down:  f.Has(core.ActionDown),
		Left:  f.Has(core.ActionLeft),
		Right: f.Has(core.ActionRight),
	}
}

// Axes returns the net intent per axis in {-1, 0, 1}. Opposite keys on the
// same axis cancel.
func (in Intent) Axes() (dx, dy int) {
	if in.Right {
		dx++
	}
	if in.Left {
		dx--
	}
	if in.Up {
		dy++
	}
	if in.Down {
		dy--
	}
	return dx, dy
}

// Zero reports whether the intent produces no motion on either axis.
func (in Intent) Zero() bool {
	dx, dy := in.Axes()
	return dx == 0 && dy == 0
}

// DefaultSubSteps is the number of collision probes per axis and tick.
const DefaultSubSteps = 4

// Result is the outcome of resolving one tick of motion.
type Result struct {
	Pos      core.Vec
	Facing   Direction
	Moved    bool
	Distance float64 // Euclidean length of the displacement
	Cell     core.Coord
}

// Resolver turns directional intent into continuous motion against a map.
type Resolver struct {
	SubSteps int
	CellW    float64
	CellH    float64
}

// NewResolver creates a resolver for cells of the given pixel size.
func NewResolver(subSteps int, cellW, cellH float64) Resolver {
	return Resolver{SubSteps: subSteps, CellW: cellW, CellH: cellH}
}

// CellOf returns the cell containing a continuous position.
func (r Resolver) CellOf(p core.Vec) core.Coord {
	return core.C(int(math.Floor(p.X/r.CellW)), int(math.Floor(p.Y/r.CellH)))
}

// Center returns the continuous position at the middle of a cell.
func (r Resolver) Center(c core.Coord) core.Vec {
	return core.V((float64(c.X)+0.5)*r.CellW, (float64(c.Y)+0.5)*r.CellH)
}

// CellUnits expresses a pixel position in cells, as the fog expects.
func (r Resolver) CellUnits(p core.Vec) core.Vec {
	return core.V(p.X/r.CellW, p.Y/r.CellH)
}

func (r Resolver) subSteps() int {
	if r.SubSteps <= 0 {
		return DefaultSubSteps
	}
	return r.SubSteps
}

// Resolve advances pos by step along the intent.
//
// Each axis is handled at most once, X first: the step is split into equal
// sub-steps and the position advances until the next probe lands in a
// blocking cell, keeping the last valid sub-position. Y then runs from the
// adjusted X, which lets an entity slide along a wall. Facing follows the last
// axis with net intent even if that axis did not move.
func (r Resolver) Resolve(pos core.Vec, facing Direction, in Intent, step float64, m Passability) Result {
	res := Result{Pos: pos, Facing: facing, Cell: r.CellOf(pos)}

	dx, dy := in.Axes()
	if step <= 0 || (dx == 0 && dy == 0) {
		return res
	}

	n := r.subSteps()
	var ax, ay float64
	if dx != 0 {
		for i := 1; i <= n; i++ {
			off := float64(dx) * step * float64(i) / float64(n)
			if m.Blocks(r.CellOf(core.V(pos.X+off, pos.Y))) {
				break
			}
			ax = off
		}
		if dx > 0 {
			res.Facing = DirRight
		} else {
			res.Facing = DirLeft
		}
	}

	x := pos.X + ax
	if dy != 0 {
		for i := 1; i <= n; i++ {
			off := float64(dy) * step * float64(i) / float64(n)
			if m.Blocks(r.CellOf(core.V(x, pos.Y+off))) {
				break
			}
			ay = off
		}
		if dy > 0 {
			res.Facing = DirUp
		} else {
			res.Facing = DirDown
		}
	}

	res.Pos = core.V(x, pos.Y+ay)
	res.Cell = r.CellOf(res.Pos)
	res.Moved = ax != 0 || ay != 0
	if res.Moved {
		// Measured on the offsets so whole steps add up exactly.
		res.Distance = math.Hypot(ax, ay)
	}
	return res
}

// Body is the motion state of one entity.
type Body struct {
	Pos    core.Vec
	Facing Direction
	Moving bool
	Travel float64 // total distance actually covered; only ever grows
}

// Cell returns the cell the body occupies.
func (b Body) Cell(r Resolver) core.Coord {
	return r.CellOf(b.Pos)
}

// Apply stores a resolution result. Travel grows only when the entity moved.
func (b *Body) Apply(res Result) {
	b.Pos = res.Pos
	b.Facing = res.Facing
	b.Moving = res.Moved
	if res.Moved {
		b.Travel += res.Distance
	}
}

// Step resolves one tick for b and applies the result.
func (r Resolver) Step(b *Body, in Intent, step float64, m Passability) Result {
	res := r.Resolve(b.Pos, b.Facing, in, step, m)
	b.Apply(res)
	return res
}
