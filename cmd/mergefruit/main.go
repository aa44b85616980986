// mergefruit is a terminal "merge the fruit" game: drop fruit into a jar,
// pair equal fruit to grow them and keep the pile below the rim.
//
// Usage:
//
//	mergefruit list                - List available variants
//	mergefruit play [variant]      - Play a variant (default: fruit)
//	mergefruit menu                - Pick variants interactively
//	mergefruit serve               - Start SSH server for remote play
//	mergefruit scores <variant>    - Show high scores for a variant
//	mergefruit config              - Print the default game config
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.mergefruit/scores.db)
//	--config <path>      - Use a custom game config YAML
//	--log-level <level>  - Log level: debug, info, warn, error
//	--merge-policy <p>   - Top-tier merge rule for every variant: wrap or cap
//
// Flags can be preset with MERGEFRUIT_* environment variables or a .env file.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-fruit/internal/config"
	"github.com/vovakirdan/merge-fruit/internal/games/fruit"
	"github.com/vovakirdan/merge-fruit/internal/platform/tui"
	"github.com/vovakirdan/merge-fruit/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
	flagPlayer   string
	flagPolicy   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mergefruit",
	Short: "Merge Fruit - drop and merge fruit in your terminal",
	Long: `Merge Fruit is a terminal physics puzzle. Drop fruit into the jar;
two equal fruit that touch merge into the next, bigger one.
The game ends when a fruit spills over the rim.

Available commands:
  list     - Show all variants
  play     - Play a variant directly
  menu     - Interactive variant picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  config   - Print the default game config

Examples:
  mergefruit play
  mergefruit play fruit_classic
  mergefruit menu
  mergefruit serve --ssh :2222
  mergefruit scores fruit`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyEnv(cmd); err != nil {
			return err
		}
		policy, err := config.ParseMergePolicy(flagPolicy)
		if err != nil {
			return err
		}
		fruit.SetConfigPath(flagConfig)
		fruit.SetMergePolicy(policy)
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.mergefruit/scores.db", "Path to scores and saved game database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", tui.DefaultLogPath, "Log file for local play")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", storage.LocalPlayer, "Player name for scores and saved games")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "merge-policy", "", "Top-tier merge rule: wrap or cap (default: config file, then variant)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
}

// openLocal opens the database and game log used by local play.
// Both are optional: failures are reported and play goes on without them.
func openLocal() (*storage.Store, *log.Logger, func()) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	logger, closer, err := tui.OpenFileLogger(flagLogFile, flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = log.New(io.Discard)
		closer = nil
	}

	cleanup := func() {
		if store != nil {
			store.Close()
		}
		if closer != nil {
			closer.Close()
		}
	}
	return store, logger, cleanup
}
