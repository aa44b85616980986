package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// envFlags maps environment variables to the flags they preset.
// A flag given on the command line always wins.
var envFlags = map[string]string{
	"MERGEFRUIT_DB":        "db",
	"MERGEFRUIT_CONFIG":    "config",
	"MERGEFRUIT_LOG_LEVEL": "log-level",
	"MERGEFRUIT_LOG_FILE":  "log-file",
	"MERGEFRUIT_PLAYER":    "player",
	"MERGEFRUIT_POLICY":    "merge-policy",
	"MERGEFRUIT_FPS":       "fps",
	"MERGEFRUIT_SSH":       "ssh",
	"MERGEFRUIT_HOST_KEY":  "host-key",
}

// applyEnv loads an optional .env file from the working directory and
// presets unset flags from MERGEFRUIT_* variables.
func applyEnv(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	flags := cmd.Flags()
	for env, name := range envFlags {
		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}
