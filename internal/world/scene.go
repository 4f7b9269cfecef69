package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/latte-escape/internal/core"
)

// ErrDuplicateActor is returned when two actors share an ID.
var ErrDuplicateActor = errors.New("world: duplicate actor id")

// Controller produces the intent of an actor that is not driven by input.
type Controller interface {
	Intent(self *Actor, snap Snapshot) Intent
}

// Actor is one moving entity of a scene.
type Actor struct {
	ID      string
	Body    Body
	Anim    Animator
	Solid   bool       // other actors cannot enter its cell
	Speed   float64    // pixels per tick
	Control Controller // nil means driven by the intents passed to Tick
}

// Sprite returns the actor's current sprite key.
func (a *Actor) Sprite() string {
	return a.Anim.Sprite(a.Body)
}

// GateEvent asks the scene to open or close a gate.
type GateEvent struct {
	Cell core.Coord
	Open bool
}

// Snapshot is the state of all actors at the start of a tick. Every actor of
// the tick is resolved against it, never against positions already updated in
// the same tick.
type Snapshot struct {
	Positions map[string]core.Vec
	Occupied  map[core.Coord][]string // solid actors per cell
}

// Move is one actor's outcome for a tick.
type Move struct {
	Result
	From    core.Coord
	Entered bool // the actor ended the tick in a different cell
}

// TickReport collects the outcome of one tick.
type TickReport struct {
	Tick  uint64
	Moves map[string]Move
	Gates []GateEvent // gate writes applied at the start of the tick
}

// Scene owns a room's map and its actors and advances them one tick at a time.
// It is not safe for concurrent use; the host drives it from one loop.
type Scene struct {
	Map      *Map
	Resolver Resolver

	actors  []*Actor
	byID    map[string]*Actor
	pending []GateEvent
	tick    uint64
}

// NewScene creates an empty scene.
func NewScene(m *Map, r Resolver) *Scene {
	return &Scene{
		Map:      m,
		Resolver: r,
		byID:     make(map[string]*Actor),
	}
}

// Add registers an actor. Actors are resolved in the order they were added.
func (s *Scene) Add(a *Actor) error {
	if _, exists := s.byID[a.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateActor, a.ID)
	}
	s.actors = append(s.actors, a)
	s.byID[a.ID] = a
	return nil
}

// Actor returns the actor with the given ID, or nil.
func (s *Scene) Actor(id string) *Actor {
	return s.byID[id]
}

// Actors returns all actors in resolution order.
func (s *Scene) Actors() []*Actor {
	return s.actors
}

// Ticks returns the number of ticks run so far.
func (s *Scene) Ticks() uint64 {
	return s.tick
}

// Post queues a gate write. It is applied at the start of the next Tick,
// before any motion is resolved.
func (s *Scene) Post(ev GateEvent) {
	s.pending = append(s.pending, ev)
}

// Snapshot captures actor positions and solid occupancy.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Positions: make(map[string]core.Vec, len(s.actors)),
		Occupied:  make(map[core.Coord][]string),
	}
	for _, a := range s.actors {
		snap.Positions[a.ID] = a.Body.Pos
		if a.Solid {
			c := s.Resolver.CellOf(a.Body.Pos)
			snap.Occupied[c] = append(snap.Occupied[c], a.ID)
		}
	}
	return snap
}

// Tick drains queued gate events and resolves every actor once. Actors with
// a Controller ignore intents; the others look theirs up by ID.
func (s *Scene) Tick(intents map[string]Intent) TickReport {
	s.tick++
	report := TickReport{Tick: s.tick, Moves: make(map[string]Move, len(s.actors))}

	for _, ev := range s.pending {
		s.Map.Gates.SetOpen(ev.Cell.X, ev.Cell.Y, ev.Open)
	}
	report.Gates = s.pending
	s.pending = nil

	snap := s.Snapshot()
	for _, a := range s.actors {
		in := intents[a.ID]
		if a.Control != nil {
			in = a.Control.Intent(a, snap)
		}
		from := s.Resolver.CellOf(snap.Positions[a.ID])
		view := occupancy{base: s.Map, occupied: snap.Occupied, self: a.ID, start: from}
		res := s.Resolver.Step(&a.Body, in, a.Speed, view)
		report.Moves[a.ID] = Move{Result: res, From: from, Entered: res.Cell != from}
	}
	return report
}

// occupancy blocks cells held by other solid actors on top of the map. The
// actor's own starting cell never blocks it, so overlapping actors can part.
type occupancy struct {
	base     Passability
	occupied map[core.Coord][]string
	self     string
	start    core.Coord
}

func (o occupancy) Blocks(c core.Coord) bool {
	if o.base.Blocks(c) {
		return true
	}
	if c == o.start {
		return false
	}
	for _, id := range o.occupied[c] {
		if id != o.self {
			return true
		}
	}
	return false
}

// Follow walks an actor toward another one along the dominant axis and stops
// once it is within StopDistance pixels.
type Follow struct {
	Target       string
	StopDistance float64
}

// Intent implements Controller.
func (f Follow) Intent(self *Actor, snap Snapshot) Intent {
	target, ok := snap.Positions[f.Target]
	if !ok {
		return Intent{}
	}
	d := target.Sub(snap.Positions[self.ID])
	if d.Len() < f.StopDistance {
		return Intent{}
	}
	if math.Abs(d.X) > math.Abs(d.Y) {
		return Intent{Right: d.X > 0, Left: d.X < 0}
	}
	return Intent{Up: d.Y > 0, Down: d.Y < 0}
}
