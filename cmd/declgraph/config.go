package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"declgraph/internal/decl"
)

const configFileName = "declgraph.toml"

// config is the optional declgraph.toml. All fields have working
// defaults; a missing file is not an error.
type config struct {
	// Mode selects typeconst enforceability composition: "shallow" or
	// "legacy".
	Mode string `toml:"mode"`
	// Color overrides the default color detection: "on" or "off".
	Color string `toml:"color"`
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		found, err := findConfig()
		if err != nil || found == "" {
			return &config{}, err
		}
		path = found
	}
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch cfg.Mode {
	case "", "shallow", "legacy":
	default:
		return nil, fmt.Errorf("config %s: unknown mode %q (must be shallow or legacy)", path, cfg.Mode)
	}
	return &cfg, nil
}

// findConfig walks from the working directory upward, like the toolchain
// locates its project manifest.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *config) enforceMode() decl.EnforceMode {
	if c != nil && c.Mode == "legacy" {
		return decl.ModeLegacy
	}
	return decl.ModeShallow
}
