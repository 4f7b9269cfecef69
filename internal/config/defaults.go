package config

import (
	_ "embed"
)

//go:embed defaults/motion.yaml
var defaultMotionYAML []byte

// DefaultMotionConfig returns the hardcoded movement tuning.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Movement: MovementConfig{
			Speed:    1.7,
			SubSteps: 4,
			CellSize: 32,
		},
		Animation: AnimationConfig{
			WalkCycle:   32,
			FrameSwitch: 16,
		},
		Fog: FogConfig{
			Radius: 1.75,
			Aspect: 1,
		},
		Companion: CompanionConfig{
			SpeedFactor:  0.8,
			StopDistance: 16,
		},
	}
}
