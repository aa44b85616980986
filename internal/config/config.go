// Package config provides YAML-based game configuration loading and
// variant presets for the merge-fruit game.
package config

import (
	"errors"
	"fmt"
)

// FruitConfig contains all configuration for the merge-fruit game.
type FruitConfig struct {
	Container ContainerConfig `yaml:"container"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Tiers     []TierConfig    `yaml:"tiers"`
	Timing    TimingConfig    `yaml:"timing"`
	Controls  ControlsConfig  `yaml:"controls"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Merge     MergeConfig     `yaml:"merge"`
}

// ContainerConfig defines the play field in world units (y axis points down).
type ContainerConfig struct {
	Width         float64 `yaml:"width"`          // Inner width between the walls
	Height        float64 `yaml:"height"`         // World height, floor at the bottom
	WallThickness float64 `yaml:"wall_thickness"` // Thickness of walls and floor
	OutsideWidth  float64 `yaml:"outside_width"`  // Width of each outside zone
	PreviewHeight float64 `yaml:"preview_height"` // Y of the preview ball and drop point
	WallColor     string  `yaml:"wall_color"`     // Wall and floor color name
	WallGlyph     string  `yaml:"wall_glyph"`     // Wall and floor glyph
	PanelColor    string  `yaml:"panel_color"`    // Border color of menu and prompt panels
}

// PhysicsConfig defines the rigid-body material and world parameters.
type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`     // Downward acceleration, units/s²
	Friction    float64 `yaml:"friction"`    // Surface friction for every body
	Restitution float64 `yaml:"restitution"` // Bounciness for every body
	Density     float64 `yaml:"density"`     // Mass per unit area for fruits
	Substeps    int     `yaml:"substeps"`    // Physics steps per game tick
}

// TierConfig describes one fruit size class.
type TierConfig struct {
	Name       string  `yaml:"name"`
	Radius     float64 `yaml:"radius"`
	ScoreValue int     `yaml:"score_value"`
	Glyph      string  `yaml:"glyph"`
	Color      string  `yaml:"color"`
}

// TimingConfig holds delays in milliseconds.
type TimingConfig struct {
	DropCooldownMS int `yaml:"drop_cooldown_ms"` // DROP -> READY delay
	PopLifetimeMS  int `yaml:"pop_lifetime_ms"`  // Lifetime of the merge flash
}

// ControlsConfig holds keyboard step sizes in world units.
type ControlsConfig struct {
	StepSmall float64 `yaml:"step_small"`
	StepBig   float64 `yaml:"step_big"`
}

// SpawnConfig controls which tiers can be dropped.
type SpawnConfig struct {
	Tiers int `yaml:"tiers"` // Drops are drawn uniformly from tiers [0, Tiers)
}

// MergePolicy decides what happens when two top-tier fruits touch.
type MergePolicy string

const (
	// MergeWrap merges two top-tier fruits back into tier 0.
	MergeWrap MergePolicy = "wrap"
	// MergeCap leaves two top-tier fruits untouched.
	MergeCap MergePolicy = "cap"
)

// MergeConfig holds merge rules.
type MergeConfig struct {
	Policy MergePolicy `yaml:"policy"` // Empty: the variant decides
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid fruit config")

// Validate checks the invariants the game relies on.
func (c FruitConfig) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidConfig)
	}
	for i, t := range c.Tiers {
		if t.Radius <= 0 {
			return fmt.Errorf("%w: tier %d radius %.2f", ErrInvalidConfig, i, t.Radius)
		}
		if t.ScoreValue < 0 {
			return fmt.Errorf("%w: tier %d score value %d", ErrInvalidConfig, i, t.ScoreValue)
		}
		if i > 0 && t.Radius <= c.Tiers[i-1].Radius {
			return fmt.Errorf("%w: tier %d radius not larger than tier %d", ErrInvalidConfig, i, i-1)
		}
	}
	if c.Container.Width <= 0 || c.Container.Height <= 0 {
		return fmt.Errorf("%w: container %.0fx%.0f", ErrInvalidConfig, c.Container.Width, c.Container.Height)
	}
	if c.Container.PreviewHeight <= 0 || c.Container.PreviewHeight >= c.Container.Height {
		return fmt.Errorf("%w: preview height %.0f outside container", ErrInvalidConfig, c.Container.PreviewHeight)
	}
	if c.Spawn.Tiers < 1 || c.Spawn.Tiers > len(c.Tiers) {
		return fmt.Errorf("%w: spawn tiers %d (have %d tiers)", ErrInvalidConfig, c.Spawn.Tiers, len(c.Tiers))
	}
	switch c.Merge.Policy {
	case "", MergeWrap, MergeCap:
	default:
		return fmt.Errorf("%w: merge policy %q", ErrInvalidConfig, c.Merge.Policy)
	}
	if c.Physics.Substeps < 1 {
		return fmt.Errorf("%w: substeps %d", ErrInvalidConfig, c.Physics.Substeps)
	}
	return nil
}

// TierCount returns the number of fruit tiers.
func (c FruitConfig) TierCount() int {
	return len(c.Tiers)
}
