// Package world implements the movement, collision and animation core shared by
// every room: a static grid classifier, a gate overlay, a sub-stepped motion
// resolver, a distance-driven animator and a radius fog.
//
// World coordinates grow to the right and upward. Row 0 of a grid is the bottom
// row of the room; continuous positions are in pixels and resolve to a cell by
// floor division with the room's cell size.
package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vovakirdan/latte-escape/internal/core"
)

// Tag is the static semantic class of a grid cell.
type Tag uint8

const (
	TagWalkable Tag = iota
	TagBlocking
	TagGated   // passability comes from the gate overlay
	TagSpecial // walkable surface with room-specific meaning
)

// String returns the tag name used in room files.
func (t Tag) String() string {
	switch t {
	case TagWalkable:
		return "walkable"
	case TagBlocking:
		return "blocking"
	case TagGated:
		return "gated"
	case TagSpecial:
		return "special"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// ParseTag converts a tag name into a Tag.
func ParseTag(s string) (Tag, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walkable", "floor", "path":
		return TagWalkable, true
	case "blocking", "wall", "solid":
		return TagBlocking, true
	case "gated", "gate", "door":
		return TagGated, true
	case "special":
		return TagSpecial, true
	}
	return TagBlocking, false
}

// Legend translates the raw integers of a room layout into tags.
type Legend map[int]Tag

// DefaultLegend is the encoding most rooms use.
func DefaultLegend() Legend {
	return Legend{
		0: TagWalkable,
		1: TagBlocking,
		2: TagSpecial,
		3: TagGated,
	}
}

// Lookup returns the tag for a raw value. Values missing from the legend
// classify as blocking.
func (l Legend) Lookup(v int) (Tag, bool) {
	t, ok := l[v]
	if !ok {
		return TagBlocking, false
	}
	return t, true
}

var (
	ErrEmptyLayout  = errors.New("world: layout has no cells")
	ErrRaggedLayout = errors.New("world: layout rows differ in length")
)

// Grid is the static classification of a room. Its dimensions and tags never
// change after construction.
type Grid struct {
	w, h    int
	tags    []Tag // row-major, row 0 at the bottom
	unknown []int
}

// NewGrid classifies a raw layout. Rows are given top row first, the way the
// room looks on screen, and are stored flipped so row 0 is the bottom.
func NewGrid(rows [][]int, legend Legend) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyLayout
	}
	if legend == nil {
		legend = DefaultLegend()
	}

	h := len(rows)
	w := len(rows[0])
	g := &Grid{w: w, h: h, tags: make([]Tag, w*h)}
	seen := make(map[int]bool)

	for i, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedLayout, i, len(row), w)
		}
		y := h - 1 - i
		for x, v := range row {
			tag, ok := legend.Lookup(v)
			if !ok && !seen[v] {
				seen[v] = true
				g.unknown = append(g.unknown, v)
			}
			g.tags[y*w+x] = tag
		}
	}
	sort.Ints(g.unknown)
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.w
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.h
}

// InBounds reports whether c addresses a cell of the grid.
func (g *Grid) InBounds(c core.Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

// Classify returns the static tag of a cell. Anything outside the grid is
// blocking.
func (g *Grid) Classify(x, y int) Tag {
	if !g.InBounds(core.C(x, y)) {
		return TagBlocking
	}
	return g.tags[y*g.w+x]
}

// Unknown returns the raw layout values that had no legend entry, sorted.
// Cells holding them were classified as blocking.
func (g *Grid) Unknown() []int {
	out := make([]int, len(g.unknown))
	copy(out, g.unknown)
	return out
}

// Cells returns every coordinate with the given tag, bottom row first.
func (g *Grid) Cells(tag Tag) []core.Coord {
	var out []core.Coord
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.tags[y*g.w+x] == tag {
				out = append(out, core.C(x, y))
			}
		}
	}
	return out
}
