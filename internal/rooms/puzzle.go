package rooms

import (
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// Puzzle holds the switch positions of one room and derives the state of
// switch-driven gates from them.
type Puzzle struct {
	def *Definition
	on  map[string]bool
}

// NewPuzzle starts every switch in its declared position, then applies saved
// positions for switches the room still declares.
func NewPuzzle(def *Definition, saved map[string]bool) *Puzzle {
	p := &Puzzle{def: def, on: make(map[string]bool, len(def.Switches))}
	for _, s := range def.Switches {
		p.on[s.ID] = s.On
		if v, ok := saved[s.ID]; ok {
			p.on[s.ID] = v
		}
	}
	return p
}

// IsOn reports whether a switch is on.
func (p *Puzzle) IsOn(id string) bool {
	return p.on[id]
}

// Switches returns a copy of every switch position.
func (p *Puzzle) Switches() map[string]bool {
	out := make(map[string]bool, len(p.on))
	for id, v := range p.on {
		out[id] = v
	}
	return out
}

// GateOpen returns the state a gate should have for the current switches.
func (p *Puzzle) GateOpen(g Gate) bool {
	if !g.Driven() {
		return g.Open
	}
	for _, id := range g.Requires {
		if !p.on[id] {
			return false
		}
	}
	for _, id := range g.Forbids {
		if p.on[id] {
			return false
		}
	}
	return true
}

// Flip toggles a switch and returns its new position along with a gate
// event for every switch-driven gate. Unknown switches are ignored.
func (p *Puzzle) Flip(id string) (bool, []world.GateEvent) {
	if _, ok := p.on[id]; !ok {
		return false, nil
	}
	p.on[id] = !p.on[id]

	var events []world.GateEvent
	for _, g := range p.def.Gates {
		if g.Driven() {
			events = append(events, world.GateEvent{Cell: g.At, Open: p.GateOpen(g)})
		}
	}
	return p.on[id], events
}

// Solved reports whether every switch-driven gate is open.
func (p *Puzzle) Solved() bool {
	driven := false
	for _, g := range p.def.Gates {
		if !g.Driven() {
			continue
		}
		driven = true
		if !p.GateOpen(g) {
			return false
		}
	}
	return driven
}

// InitialGates returns the gate overlay for room entry: declared or derived
// states, replaced by saved states where the saved cell is still a gate.
func (p *Puzzle) InitialGates(saved map[core.Coord]bool) map[core.Coord]bool {
	out := make(map[core.Coord]bool, len(p.def.Gates))
	for _, g := range p.def.Gates {
		out[g.At] = p.GateOpen(g)
		if v, ok := saved[g.At]; ok {
			out[g.At] = v
		}
	}
	return out
}
