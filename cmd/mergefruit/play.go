package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/merge-fruit/internal/core"
	"github.com/vovakirdan/merge-fruit/internal/platform/tui"
	"github.com/vovakirdan/merge-fruit/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play a variant",
	Long: `Start playing the given variant (default: fruit).

Controls:
  Left/Right, 4/6   - Move the next fruit a small step
  1/3               - Move the next fruit a big step
  Mouse             - Hover to aim, click to drop
  Enter/Down/5      - Drop (and start from the title screen)
  Esc/B             - Save prompt while playing, leave from the title screen
  Y/N               - Answer the save prompt
  R                 - Restart after game over
  Ctrl+S            - Save a text screenshot
  Q/Ctrl+C          - Quit

Examples:
  mergefruit play
  mergefruit play fruit_pastel
  mergefruit play --seed 42
  mergefruit play --config ./my-fruit.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := "fruit"
	if len(args) == 1 {
		gameID = args[0]
	}

	// Check if variant exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'mergefruit list' to see available variants.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, logger, cleanup := openLocal()

	runErr := tui.Run(game, tui.Options{Store: store, Player: flagPlayer, Logger: logger}, terminalConfig())

	// Close store before potential exit
	cleanup()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// terminalConfig builds the runtime config from the flags and the
// current terminal size.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
