package rooms

import (
	"fmt"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/world"
)

// Saved is the room state re-supplied by the store on entry.
type Saved struct {
	Gates    map[core.Coord]bool
	Switches map[string]bool
	Player   *world.Body // nil to use the room's spawn
}

// Built is a room ready to play.
type Built struct {
	Def    *Definition
	Scene  *world.Scene
	Puzzle *Puzzle
	Fog    *world.Fog // nil when the room has no fog

	// Resumed is set when the player was placed at the saved position.
	// A saved position inside a blocked cell falls back to the spawn.
	Resumed bool
}

// Player returns the player actor.
func (b *Built) Player() *world.Actor {
	return b.Scene.Actor(PlayerID)
}

// Build classifies the layout, restores gates and switches and places the
// player and every declared actor. saved may be nil.
func Build(def *Definition, cfg config.MotionConfig, saved *Saved) (*Built, error) {
	if saved == nil {
		saved = &Saved{}
	}

	grid, err := def.Grid()
	if err != nil {
		return nil, fmt.Errorf("building room %s: %w", def.ID, err)
	}
	m := world.NewMap(grid)
	scene := world.NewScene(m, world.NewResolver(cfg.Movement.SubSteps, def.CellW, def.CellH))

	puzzle := NewPuzzle(def, saved.Switches)
	for c, open := range puzzle.InitialGates(saved.Gates) {
		m.Gates.SetOpen(c.X, c.Y, open)
	}

	resumed := false
	body := world.Body{Pos: def.Spawn.Pos, Facing: def.Spawn.Facing}
	if saved.Player != nil && !m.Blocks(saved.Player.Cell(scene.Resolver)) {
		body = *saved.Player
		body.Moving = false
		resumed = true
	}
	if c := body.Cell(scene.Resolver); m.Blocks(c) {
		return nil, fmt.Errorf("building room %s: %w: player starts in blocked cell %v", def.ID, ErrInvalidRoom, c)
	}
	player := &world.Actor{
		ID:    PlayerID,
		Body:  body,
		Anim:  world.NewAnimator(PlayerID, cfg.Animation.WalkCycle, cfg.Animation.FrameSwitch),
		Solid: true,
		Speed: cfg.Movement.Speed,
	}
	if err := scene.Add(player); err != nil {
		return nil, fmt.Errorf("building room %s: %w", def.ID, err)
	}

	for _, a := range def.Actors {
		actor := &world.Actor{
			ID:    a.ID,
			Body:  world.Body{Pos: scene.Resolver.Center(a.At), Facing: a.Facing},
			Anim:  world.NewAnimator(a.Sprite, cfg.Animation.WalkCycle, cfg.Animation.FrameSwitch),
			Solid: a.Solid,
			Speed: a.Speed,
		}
		if m.Blocks(a.At) {
			return nil, fmt.Errorf("building room %s: %w: actor %q starts in blocked cell %v", def.ID, ErrInvalidRoom, a.ID, a.At)
		}
		if a.Follow != "" {
			actor.Control = world.Follow{Target: a.Follow, StopDistance: cfg.Companion.StopDistance}
			if actor.Speed == 0 {
				actor.Speed = cfg.CompanionSpeed()
			}
		}
		if err := scene.Add(actor); err != nil {
			return nil, fmt.Errorf("building room %s: %w", def.ID, err)
		}
	}

	built := &Built{Def: def, Scene: scene, Puzzle: puzzle, Resumed: resumed}
	if def.Fog != nil {
		fog := world.Fog{Radius: def.Fog.Radius, Aspect: def.Fog.Aspect, Occlude: def.Fog.Occlude}
		if fog.Radius == 0 {
			fog.Radius = cfg.Fog.Radius
		}
		if fog.Aspect == 0 {
			fog.Aspect = cfg.Fog.Aspect
		}
		built.Fog = &fog
	}
	return built, nil
}
