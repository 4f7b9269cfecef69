// Package session runs one visit to a room: it turns input frames into
// scene ticks, flips switches, reports exits and carries room state to and
// from the store.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	"github.com/vovakirdan/latte-escape/internal/storage"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// DefaultSlot is the save slot used when none is given.
const DefaultSlot = "default"

// Store is the room-state store a session restores from and saves to.
// *storage.Store implements it.
type Store interface {
	LoadGates(slot, roomID string) (map[core.Coord]bool, error)
	SaveGates(slot, roomID string, gates map[core.Coord]bool) error
	LoadSwitches(slot, roomID string) (map[string]bool, error)
	SaveSwitches(slot, roomID string, switches map[string]bool) error
	LoadMotion(slot string) (*storage.MotionRecord, error)
	SaveMotion(rec storage.MotionRecord) error
}

var _ Store = (*storage.Store)(nil)

// Frame is what one Step produced.
type Frame struct {
	Tick    uint64
	Player  world.Body
	Cell    core.Coord
	Sprite  string
	Moved   bool
	Entered bool
	Sprites map[string]string
	Mask    [][]float64 // nil when the room has no fog
	Exit    *rooms.Exit // set on the tick the player steps onto an exit
	Notice  string
	Paused  bool
}

// Option configures a Session.
type Option func(*Session)

// WithStore restores and persists room state through st.
func WithStore(st Store) Option {
	return func(s *Session) { s.store = st }
}

// WithLogger sets the logger for room events.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSlot selects the save slot.
func WithSlot(slot string) Option {
	return func(s *Session) { s.slot = slot }
}

// Session is a single room visit. It is driven from one goroutine.
type Session struct {
	def    *rooms.Definition
	cfg    config.MotionConfig
	built  *rooms.Built
	store  Store
	logger *log.Logger
	slot   string

	paused bool
	closed bool
	last   Frame
}

// New enters a room. With a store, saved gates and switches are restored and
// the player resumes from the slot's save if it was made in this room.
func New(def *rooms.Definition, cfg config.MotionConfig, opts ...Option) (*Session, error) {
	s := &Session{def: def, cfg: cfg, slot: DefaultSlot}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.With("room", def.ID)

	saved, err := s.restore()
	if err != nil {
		return nil, err
	}

	built, err := rooms.Build(def, cfg, saved)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.built = built
	if u := built.Scene.Map.Grid.Unknown(); len(u) > 0 {
		s.logger.Warn("unknown layout values block", "values", u)
	}
	if saved.Player != nil && !built.Resumed {
		s.logger.Warn("saved position is blocked, starting at spawn", "slot", s.slot, "pos", saved.Player.Pos)
	}

	player := built.Player()
	s.last = Frame{
		Player:  player.Body,
		Cell:    player.Body.Cell(built.Scene.Resolver),
		Sprite:  player.Sprite(),
		Sprites: s.sprites(),
		Mask:    s.mask(),
	}
	s.logger.Info("room entered", "slot", s.slot, "resumed", built.Resumed, "cell", s.last.Cell)
	return s, nil
}

func (s *Session) restore() (*rooms.Saved, error) {
	saved := &rooms.Saved{}
	if s.store == nil {
		return saved, nil
	}

	var err error
	if saved.Gates, err = s.store.LoadGates(s.slot, s.def.ID); err != nil {
		return nil, fmt.Errorf("session: restoring gates: %w", err)
	}
	if saved.Switches, err = s.store.LoadSwitches(s.slot, s.def.ID); err != nil {
		return nil, fmt.Errorf("session: restoring switches: %w", err)
	}
	rec, err := s.store.LoadMotion(s.slot)
	if err != nil {
		return nil, fmt.Errorf("session: restoring motion: %w", err)
	}
	if rec != nil && rec.RoomID == s.def.ID {
		facing, _ := world.ParseDirection(rec.Facing)
		saved.Player = &world.Body{Pos: core.V(rec.X, rec.Y), Facing: facing, Travel: rec.Travel}
	}
	return saved, nil
}

// Room returns the definition of the room being played.
func (s *Session) Room() *rooms.Definition {
	return s.def
}

// Scene exposes the underlying scene.
func (s *Session) Scene() *world.Scene {
	return s.built.Scene
}

// Last returns the most recent frame.
func (s *Session) Last() Frame {
	return s.last
}

// Step advances the room by one tick.
//
// Interact flips the switch under the player; its gate changes are queued
// and take effect within this same tick. Pause toggles a freeze during which
// no tick runs.
func (s *Session) Step(in core.InputFrame) Frame {
	if in.Has(core.ActionPause) {
		s.paused = !s.paused
	}
	if s.paused {
		s.last.Paused = true
		s.last.Exit = nil
		s.last.Notice = "paused"
		return s.last
	}

	scene := s.built.Scene
	player := s.built.Player()
	notice := ""

	if in.Has(core.ActionInteract) {
		notice = s.interact(player.Body.Cell(scene.Resolver))
	}

	report := scene.Tick(map[string]world.Intent{rooms.PlayerID: world.IntentFromFrame(in)})
	move := report.Moves[rooms.PlayerID]

	frame := Frame{
		Tick:    report.Tick,
		Player:  player.Body,
		Cell:    move.Cell,
		Sprite:  player.Sprite(),
		Moved:   move.Moved,
		Entered: move.Entered,
		Sprites: s.sprites(),
		Mask:    s.mask(),
		Notice:  notice,
	}
	if move.Entered {
		if exit, ok := s.def.ExitAt(move.Cell); ok {
			frame.Exit = &exit
			s.logger.Info("exit reached", "to", exit.To, "cell", exit.At)
		}
	}
	s.last = frame
	return frame
}

func (s *Session) interact(cell core.Coord) string {
	sw, ok := s.def.SwitchAt(cell)
	if !ok {
		return ""
	}
	on, events := s.built.Puzzle.Flip(sw.ID)
	for _, ev := range events {
		s.built.Scene.Post(ev)
	}

	state := "off"
	if on {
		state = "on"
	}
	s.logger.Debug("switch flipped", "switch", sw.ID, "on", on, "gates", len(events))
	if s.built.Puzzle.Solved() {
		return fmt.Sprintf("%s %s: something unlocked", sw.ID, state)
	}
	return fmt.Sprintf("%s %s", sw.ID, state)
}

func (s *Session) sprites() map[string]string {
	out := make(map[string]string, len(s.built.Scene.Actors()))
	for _, a := range s.built.Scene.Actors() {
		out[a.ID] = a.Sprite()
	}
	return out
}

func (s *Session) mask() [][]float64 {
	fog := s.built.Fog
	if fog == nil {
		return nil
	}
	scene := s.built.Scene
	observer := scene.Resolver.CellUnits(s.built.Player().Body.Pos)
	return fog.Mask(scene.Map, observer)
}

// Close ends the visit and persists gates, switches and the player's motion
// state. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.store == nil {
		return nil
	}

	body := s.built.Player().Body
	err := errors.Join(
		s.store.SaveGates(s.slot, s.def.ID, s.built.Scene.Map.Gates.Snapshot()),
		s.store.SaveSwitches(s.slot, s.def.ID, s.built.Puzzle.Switches()),
		s.store.SaveMotion(storage.MotionRecord{
			Slot:   s.slot,
			RoomID: s.def.ID,
			X:      body.Pos.X,
			Y:      body.Pos.Y,
			Facing: body.Facing.String(),
			Travel: body.Travel,
		}),
	)
	if err != nil {
		s.logger.Error("saving room failed", "err", err)
		return fmt.Errorf("session: saving room %s: %w", s.def.ID, err)
	}
	s.logger.Info("room saved", "slot", s.slot, "ticks", s.built.Scene.Ticks())
	return nil
}
