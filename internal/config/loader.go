package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppDir is the per-user directory holding configs, the database and logs.
const AppDir = ".mergefruit"

// LoadFruit loads the merge-fruit configuration.
// Search order: customPath -> ~/.mergefruit/configs/fruit.yaml -> ./configs/fruit.yaml -> embedded default
func LoadFruit(customPath string) (FruitConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return FruitConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseFruit(data)
		if err != nil {
			return FruitConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("fruit.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseFruit(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/fruit.yaml"); err == nil {
		if cfg, err := parseFruit(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseFruit(defaultFruitYAML)
	if err != nil {
		return DefaultFruitConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseFruit decodes YAML on top of the built-in defaults, so partial files
// only override what they mention, and validates the result.
func parseFruit(data []byte) (FruitConfig, error) {
	cfg := DefaultFruitConfig()
	// A file that lists tiers replaces the whole table.
	cfg.Tiers = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FruitConfig{}, err
	}
	if cfg.Tiers == nil {
		cfg.Tiers = DefaultFruitConfig().Tiers
	}
	if err := cfg.Validate(); err != nil {
		return FruitConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, AppDir, "configs", filename)
}
