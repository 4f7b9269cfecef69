// Package rooms describes playable rooms as data: a layout, its legend, the
// gates and switches of its puzzle, exits to other rooms and the actors that
// start in it. Definitions are loaded from YAML and built into world scenes.
package rooms

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// PlayerID is the actor ID of the player in every scene.
const PlayerID = "latte"

var (
	ErrInvalidRoom = errors.New("rooms: invalid room")
	ErrUnknownTag  = errors.New("rooms: unknown tag name")
	ErrNotFound    = errors.New("rooms: room not found")
)

// Spawn is where the player enters a room, in pixels.
type Spawn struct {
	Pos    core.Vec
	Facing world.Direction
}

// Gate is a gated cell driven by switches. A gate with no requirements keeps
// its declared state until a saved state replaces it.
type Gate struct {
	ID       string
	At       core.Coord
	Open     bool
	Requires []string // switches that must be on
	Forbids  []string // switches that must be off
}

// Driven reports whether the gate state is derived from switches.
func (g Gate) Driven() bool {
	return len(g.Requires) > 0 || len(g.Forbids) > 0
}

// Switch is a lever the player can flip while standing on its cell.
type Switch struct {
	ID string
	At core.Coord
	On bool
}

// Exit moves the player to another room when it enters the cell.
type Exit struct {
	At core.Coord
	To string
}

// ActorDef declares a non-player actor.
type ActorDef struct {
	ID     string
	Sprite string
	At     core.Coord // placed at the cell centre
	Facing world.Direction
	Solid  bool
	Follow string  // actor ID to follow, empty for a static actor
	Speed  float64 // pixels per tick, 0 for the configured default
}

// FogDef enables the visibility mask for a room.
type FogDef struct {
	Radius  float64
	Aspect  float64
	Occlude bool
}

// Definition is a complete room description.
type Definition struct {
	ID       string
	Name     string
	CellW    float64
	CellH    float64
	Legend   world.Legend
	Layout   [][]int // top row first
	Spawn    Spawn
	Gates    []Gate
	Switches []Switch
	Exits    []Exit
	Actors   []ActorDef
	Fog      *FogDef
	FilePath string
}

// Grid classifies the layout.
func (d *Definition) Grid() (*world.Grid, error) {
	return world.NewGrid(d.Layout, d.Legend)
}

// SwitchAt returns the switch on cell c.
func (d *Definition) SwitchAt(c core.Coord) (Switch, bool) {
	for _, s := range d.Switches {
		if s.At == c {
			return s, true
		}
	}
	return Switch{}, false
}

// ExitAt returns the exit on cell c.
func (d *Definition) ExitAt(c core.Coord) (Exit, bool) {
	for _, e := range d.Exits {
		if e.At == c {
			return e, true
		}
	}
	return Exit{}, false
}

// cellOf returns the cell holding a position of this room.
func (d *Definition) cellOf(p core.Vec) core.Coord {
	return world.NewResolver(0, d.CellW, d.CellH).CellOf(p)
}

// startMap is the map as a fresh visit sees it, with every gate in its
// declared or switch-derived state.
func (d *Definition) startMap(grid *world.Grid) *world.Map {
	m := world.NewMap(grid)
	for c, open := range NewPuzzle(d, nil).InitialGates(nil) {
		m.Gates.SetOpen(c.X, c.Y, open)
	}
	return m
}

// Validate checks that the room is self-consistent: a rectangular layout,
// unique IDs, gates on gated cells and every reference resolvable.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRoom)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidRoom, d.ID, fmt.Sprintf(format, args...))
	}

	if d.CellW <= 0 || d.CellH <= 0 {
		return invalid("cell size %vx%v must be positive", d.CellW, d.CellH)
	}
	grid, err := d.Grid()
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRoom, d.ID, err)
	}

	ids := map[string]string{PlayerID: "player"}
	claim := func(kind, id string) error {
		if id == "" {
			return invalid("%s without id", kind)
		}
		if prev, ok := ids[id]; ok {
			return invalid("%s id %q already used by a %s", kind, id, prev)
		}
		ids[id] = kind
		return nil
	}

	spawnCell := d.cellOf(d.Spawn.Pos)
	if !grid.InBounds(spawnCell) {
		return invalid("spawn %v outside the layout", d.Spawn.Pos)
	}

	switches := make(map[string]bool, len(d.Switches))
	for _, s := range d.Switches {
		if err := claim("switch", s.ID); err != nil {
			return err
		}
		if !grid.InBounds(s.At) {
			return invalid("switch %q at %v outside the layout", s.ID, s.At)
		}
		switches[s.ID] = true
	}

	for _, g := range d.Gates {
		if err := claim("gate", g.ID); err != nil {
			return err
		}
		if t := grid.Classify(g.At.X, g.At.Y); t != world.TagGated {
			return invalid("gate %q at %v is on a %s cell", g.ID, g.At, t)
		}
		for _, ref := range append(append([]string{}, g.Requires...), g.Forbids...) {
			if !switches[ref] {
				return invalid("gate %q references unknown switch %q", g.ID, ref)
			}
		}
	}

	for _, e := range d.Exits {
		if !grid.InBounds(e.At) {
			return invalid("exit to %q at %v outside the layout", e.To, e.At)
		}
		if e.To == "" {
			return invalid("exit at %v has no target room", e.At)
		}
	}

	for _, a := range d.Actors {
		if err := claim("actor", a.ID); err != nil {
			return err
		}
		if !grid.InBounds(a.At) {
			return invalid("actor %q at %v outside the layout", a.ID, a.At)
		}
	}
	for _, a := range d.Actors {
		if a.Follow == "" {
			continue
		}
		if kind := ids[a.Follow]; kind != "player" && kind != "actor" {
			return invalid("actor %q follows unknown actor %q", a.ID, a.Follow)
		}
	}

	start := d.startMap(grid)
	if start.Blocks(spawnCell) {
		return invalid("spawn %v is on a blocked cell", spawnCell)
	}
	for _, a := range d.Actors {
		if start.Blocks(a.At) {
			return invalid("actor %q at %v is on a blocked cell", a.ID, a.At)
		}
	}

	if d.Fog != nil && (d.Fog.Radius < 0 || d.Fog.Aspect < 0) {
		return invalid("fog values must not be negative")
	}
	return nil
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Layout = make([][]int, len(d.Layout))
	for i, row := range d.Layout {
		out.Layout[i] = append([]int(nil), row...)
	}
	if d.Legend != nil {
		out.Legend = make(world.Legend, len(d.Legend))
		for k, v := range d.Legend {
			out.Legend[k] = v
		}
	}
	out.Gates = make([]Gate, len(d.Gates))
	for i, g := range d.Gates {
		g.Requires = append([]string(nil), g.Requires...)
		g.Forbids = append([]string(nil), g.Forbids...)
		out.Gates[i] = g
	}
	out.Switches = append([]Switch(nil), d.Switches...)
	out.Exits = append([]Exit(nil), d.Exits...)
	out.Actors = append([]ActorDef(nil), d.Actors...)
	if d.Fog != nil {
		fog := *d.Fog
		out.Fog = &fog
	}
	return &out
}
