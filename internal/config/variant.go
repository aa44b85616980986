package config

import (
	"fmt"
	"sort"
)

// Variant is a named preset of the game. Variants share the physics and tier
// sizes and differ in look, top-tier merge rule and storage namespace.
type Variant struct {
	ID      string
	Title   string
	Policy  MergePolicy
	Palette []Swatch // Optional per-tier glyph/color override, indexed by tier
	Walls   Swatch   // Optional wall override
}

// Swatch is a glyph and color pair used to draw something.
type Swatch struct {
	Glyph string
	Color string
}

var variants = map[string]Variant{
	"fruit": {
		ID:     "fruit",
		Title:  "Merge Fruit",
		Policy: MergeWrap,
	},
	"fruit_classic": {
		ID:     "fruit_classic",
		Title:  "Merge Fruit (Classic)",
		Policy: MergeCap,
	},
	"fruit_pastel": {
		ID:     "fruit_pastel",
		Title:  "Merge Fruit (Pastel)",
		Policy: MergeWrap,
		Palette: []Swatch{
			{"●", "pink"},
			{"●", "bright_magenta"},
			{"●", "purple"},
			{"●", "bright_blue"},
			{"●", "cyan"},
			{"●", "bright_cyan"},
			{"●", "bright_green"},
			{"●", "lime"},
			{"●", "bright_yellow"},
			{"●", "orange"},
			{"●", "bright_white"},
		},
		Walls: Swatch{"▓", "gray"},
	},
}

// GetVariant returns the preset with the given ID.
func GetVariant(id string) (Variant, bool) {
	v, ok := variants[id]
	return v, ok
}

// Variants returns all presets sorted by ID.
func Variants() []Variant {
	result := make([]Variant, 0, len(variants))
	for _, v := range variants {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// ApplyVariant modifies the config based on a variant preset.
// The variant's merge policy only fills in a policy the config leaves unset.
// Palette entries beyond the tier table are ignored; missing ones keep the config's look.
func ApplyVariant(cfg *FruitConfig, v Variant) {
	if cfg.Merge.Policy == "" {
		cfg.Merge.Policy = v.Policy
	}
	if cfg.Merge.Policy == "" {
		cfg.Merge.Policy = MergeWrap
	}
	cfg.Tiers = append([]TierConfig(nil), cfg.Tiers...)
	for i := range cfg.Tiers {
		if i >= len(v.Palette) {
			break
		}
		if v.Palette[i].Glyph != "" {
			cfg.Tiers[i].Glyph = v.Palette[i].Glyph
		}
		if v.Palette[i].Color != "" {
			cfg.Tiers[i].Color = v.Palette[i].Color
		}
	}
	if v.Walls.Glyph != "" {
		cfg.Container.WallGlyph = v.Walls.Glyph
	}
	if v.Walls.Color != "" {
		cfg.Container.WallColor = v.Walls.Color
	}
}

// ApplyMergePolicy overrides the top-tier rule with the --merge-policy flag.
// Empty leaves the config unchanged.
func ApplyMergePolicy(cfg *FruitConfig, policy MergePolicy) {
	if policy != "" {
		cfg.Merge.Policy = policy
	}
}

// ParseMergePolicy checks a policy name given on the command line.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(s); p {
	case "", MergeWrap, MergeCap:
		return p, nil
	}
	return "", fmt.Errorf("%w: merge policy %q (want wrap or cap)", ErrInvalidConfig, s)
}

// ResolveFruit builds the config a variant plays with. Policy precedence:
// override, then the config file, then the variant.
func ResolveFruit(customPath string, v Variant, override MergePolicy) (FruitConfig, error) {
	cfg, err := LoadFruit(customPath)
	if err != nil {
		return FruitConfig{}, err
	}
	ApplyVariant(&cfg, v)
	ApplyMergePolicy(&cfg, override)
	return cfg, nil
}
