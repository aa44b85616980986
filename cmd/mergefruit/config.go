package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-fruit/internal/config"
)

var flagCheckConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default game config",
	Long: `Print the built-in game config as YAML. Save it to
~/.mergefruit/configs/fruit.yaml or ./configs/fruit.yaml and edit it
to change tiers, physics or timing.

With --check, the config found by the usual search (or --config)
is loaded and validated instead, and the top-tier merge rule each
variant ends up with is listed.

Examples:
  mergefruit config > ~/.mergefruit/configs/fruit.yaml
  mergefruit config --check --config ./my-fruit.yaml`,
	Run: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagCheckConfig, "check", false, "Validate the active config instead of printing the default")
}

func runConfig(_ *cobra.Command, _ []string) {
	if !flagCheckConfig {
		//nolint:errcheck // Nothing to do if stdout is gone
		os.Stdout.Write(config.GetDefaultYAML())
		return
	}

	cfg, err := config.LoadFruit(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config OK: %d tiers, container %gx%g\n", cfg.TierCount(), cfg.Container.Width, cfg.Container.Height)

	override, _ := config.ParseMergePolicy(flagPolicy) // Checked in PersistentPreRunE
	for _, v := range config.Variants() {
		resolved, err := config.ResolveFruit(flagConfig, v, override)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-16s merge policy %s\n", v.ID, resolved.Merge.Policy)
	}
}
