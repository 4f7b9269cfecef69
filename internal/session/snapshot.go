package session

import (
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// Snapshot captures the complete room state for determinism testing.
type Snapshot struct {
	Tick     uint64
	Room     string
	Paused   bool
	Player   world.Body
	Actors   map[string]world.Body
	Gates    map[core.Coord]bool
	Switches map[string]bool
}

// Snapshot returns the current room snapshot.
func (s *Session) Snapshot() Snapshot {
	scene := s.built.Scene
	actors := make(map[string]world.Body, len(scene.Actors()))
	for _, a := range scene.Actors() {
		actors[a.ID] = a.Body
	}
	return Snapshot{
		Tick:     scene.Ticks(),
		Room:     s.def.ID,
		Paused:   s.paused,
		Player:   s.built.Player().Body,
		Actors:   actors,
		Gates:    scene.Map.Gates.Snapshot(),
		Switches: s.built.Puzzle.Switches(),
	}
}
