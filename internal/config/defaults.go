package config

import (
	_ "embed"
)

//go:embed defaults/fruit.yaml
var defaultFruitYAML []byte

// DefaultFruitConfig returns the built-in configuration. It mirrors
// defaults/fruit.yaml and is used when the embedded file cannot be parsed.
func DefaultFruitConfig() FruitConfig {
	return FruitConfig{
		Container: ContainerConfig{
			Width:         640,
			Height:        960,
			WallThickness: 32,
			OutsideWidth:  500,
			PreviewHeight: 128,
			WallColor:     "brown",
			WallGlyph:     "█",
			PanelColor:    "yellow",
		},
		Physics: PhysicsConfig{
			Gravity:     1000,
			Friction:    0.006,
			Restitution: 0.1,
			Density:     1.0,
			Substeps:    2,
		},
		Tiers: []TierConfig{
			{Name: "cherry", Radius: 24.5, ScoreValue: 1, Glyph: "c", Color: "red"},
			{Name: "strawberry", Radius: 31.5, ScoreValue: 3, Glyph: "s", Color: "bright_red"},
			{Name: "grape", Radius: 44, ScoreValue: 6, Glyph: "g", Color: "purple"},
			{Name: "dekopon", Radius: 48, ScoreValue: 10, Glyph: "d", Color: "bright_yellow"},
			{Name: "persimmon", Radius: 63, ScoreValue: 15, Glyph: "p", Color: "orange"},
			{Name: "apple", Radius: 82, ScoreValue: 21, Glyph: "a", Color: "bright_red"},
			{Name: "pear", Radius: 92, ScoreValue: 28, Glyph: "r", Color: "yellow"},
			{Name: "peach", Radius: 111.5, ScoreValue: 36, Glyph: "h", Color: "pink"},
			{Name: "pineapple", Radius: 125.5, ScoreValue: 45, Glyph: "i", Color: "bright_yellow"},
			{Name: "melon", Radius: 154.5, ScoreValue: 55, Glyph: "m", Color: "lime"},
			{Name: "watermelon", Radius: 180, ScoreValue: 66, Glyph: "W", Color: "green"},
		},
		Timing: TimingConfig{
			DropCooldownMS: 500,
			PopLifetimeMS:  100,
		},
		Controls: ControlsConfig{
			StepSmall: 20,
			StepBig:   60,
		},
		Spawn: SpawnConfig{
			Tiers: 5,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultFruitYAML
}
