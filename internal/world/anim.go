package world

import (
	"fmt"
	"math"
)

// Walk cycle defaults: one stride every 32 units of travel, switching frames
// halfway through.
const (
	DefaultWalkCycle   = 32.0
	DefaultFrameSwitch = 16.0
)

// Animator picks sprite keys for one character from its motion state. The
// walking frame depends only on distance travelled, never on elapsed time.
type Animator struct {
	Name  string  // sprite prefix, e.g. "latte"
	Cycle float64 // travel per full stride
	Half  float64 // travel per frame
}

// NewAnimator creates an animator. Non-positive lengths fall back to the
// defaults.
func NewAnimator(name string, cycle, half float64) Animator {
	if cycle <= 0 {
		cycle = DefaultWalkCycle
	}
	if half <= 0 {
		half = DefaultFrameSwitch
	}
	return Animator{Name: name, Cycle: cycle, Half: half}
}

// Phase returns the stride phase (0 or 1 with default lengths) for a travel
// distance.
func (a Animator) Phase(travel float64) int {
	cycle, half := a.Cycle, a.Half
	if cycle <= 0 || half <= 0 {
		cycle, half = DefaultWalkCycle, DefaultFrameSwitch
	}
	m := math.Mod(travel, cycle)
	if m < 0 {
		m += cycle
	}
	return int(math.Floor(m / half))
}

// SpriteKey returns the sprite for a facing and motion state. A stopped
// entity always gets its standing sprite.
func (a Animator) SpriteKey(dir Direction, moving bool, travel float64) string {
	if !moving {
		return fmt.Sprintf("%s_%s_standing", a.Name, dir)
	}
	return fmt.Sprintf("%s_%s_walking%d", a.Name, dir, a.Phase(travel)+1)
}

// Sprite is SpriteKey for a body.
func (a Animator) Sprite(b Body) string {
	return a.SpriteKey(b.Facing, b.Moving, b.Travel)
}
