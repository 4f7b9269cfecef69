// Package config provides YAML-based tuning of the movement core: step size,
// collision sub-steps, walk cycle, fog radius and companion behaviour.
package config

import (
	"errors"
	"fmt"
)

// MotionConfig contains every tunable constant of the movement core.
type MotionConfig struct {
	Movement  MovementConfig  `yaml:"movement"`
	Animation AnimationConfig `yaml:"animation"`
	Fog       FogConfig       `yaml:"fog"`
	Companion CompanionConfig `yaml:"companion"`
}

// MovementConfig defines how far entities move per tick and how collisions are probed.
type MovementConfig struct {
	Speed    float64 `yaml:"speed"`     // pixels per tick
	SubSteps int     `yaml:"sub_steps"` // collision probes per axis and tick
	CellSize float64 `yaml:"cell_size"` // default cell size for rooms that do not set one
}

// AnimationConfig defines the walk cycle in units of travelled distance.
type AnimationConfig struct {
	WalkCycle   float64 `yaml:"walk_cycle"`
	FrameSwitch float64 `yaml:"frame_switch"`
}

// FogConfig defines the default visibility radius for rooms with fog.
type FogConfig struct {
	Radius float64 `yaml:"radius"` // in cells
	Aspect float64 `yaml:"aspect"` // cell width / height on screen
}

// CompanionConfig defines how following actors trail the player.
type CompanionConfig struct {
	SpeedFactor  float64 `yaml:"speed_factor"`  // fraction of the player's speed
	StopDistance float64 `yaml:"stop_distance"` // pixels
}

var ErrInvalidConfig = errors.New("config: invalid motion config")

// Validate fills zero fields with defaults and rejects negative or
// inconsistent values.
func (c *MotionConfig) Validate() error {
	def := DefaultMotionConfig()

	fill := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&c.Movement.Speed, def.Movement.Speed)
	fill(&c.Movement.CellSize, def.Movement.CellSize)
	fill(&c.Animation.WalkCycle, def.Animation.WalkCycle)
	fill(&c.Animation.FrameSwitch, def.Animation.FrameSwitch)
	fill(&c.Fog.Radius, def.Fog.Radius)
	fill(&c.Fog.Aspect, def.Fog.Aspect)
	fill(&c.Companion.SpeedFactor, def.Companion.SpeedFactor)
	fill(&c.Companion.StopDistance, def.Companion.StopDistance)
	if c.Movement.SubSteps == 0 {
		c.Movement.SubSteps = def.Movement.SubSteps
	}

	switch {
	case c.Movement.Speed < 0:
		return fmt.Errorf("%w: movement.speed %v is negative", ErrInvalidConfig, c.Movement.Speed)
	case c.Movement.SubSteps < 0:
		return fmt.Errorf("%w: movement.sub_steps %d is negative", ErrInvalidConfig, c.Movement.SubSteps)
	case c.Movement.CellSize < 0:
		return fmt.Errorf("%w: movement.cell_size %v is negative", ErrInvalidConfig, c.Movement.CellSize)
	case c.Animation.WalkCycle < 0 || c.Animation.FrameSwitch < 0:
		return fmt.Errorf("%w: animation lengths must be positive", ErrInvalidConfig)
	case c.Animation.FrameSwitch > c.Animation.WalkCycle:
		return fmt.Errorf("%w: animation.frame_switch %v exceeds walk_cycle %v",
			ErrInvalidConfig, c.Animation.FrameSwitch, c.Animation.WalkCycle)
	case c.Fog.Radius < 0 || c.Fog.Aspect < 0:
		return fmt.Errorf("%w: fog values must be positive", ErrInvalidConfig)
	case c.Companion.SpeedFactor < 0 || c.Companion.StopDistance < 0:
		return fmt.Errorf("%w: companion values must be positive", ErrInvalidConfig)
	}
	return nil
}

// CompanionSpeed returns the per-tick speed of a following actor.
func (c MotionConfig) CompanionSpeed() float64 {
	return c.Movement.Speed * c.Companion.SpeedFactor
}
