package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// DefaultLogPath is where local sessions write their log. The terminal is
// owned by the game, so local logs never go to stderr.
const DefaultLogPath = "~/.mergefruit/mergefruit.log"

// OpenFileLogger opens a logger appending to path at the given level
// ("debug", "info", "warn", "error"). The returned closer releases the file.
func OpenFileLogger(path, level string) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log: bad level %q: %w", level, err)
	}

	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, nil, fmt.Errorf("log: cannot get home directory: %w", homeErr)
		}
		path = filepath.Join(home, path[2:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log: cannot create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("log: cannot open %s: %w", path, err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          "mergefruit",
	})
	return logger, f, nil
}

// NewStderrLogger returns a leveled logger for commands that own no screen.
func NewStderrLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mergefruit",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
