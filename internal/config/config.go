// Package config loads cellgraph's user configuration.
//
// Configuration lives in config.toml under $XDG_CONFIG_HOME/cellgraph (or
// ~/.config/cellgraph). A missing file means defaults:
//
//	max_chain_depth = 4096
//	log_level = "info"
//
//	[serve]
//	addr = "127.0.0.1:8080"
//	metrics = true
//
//	[graph]
//	format = "svg"
//	cache = true
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/render"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

const appName = "cellgraph"

// Config is the decoded configuration file.
type Config struct {
	MaxChainDepth int    `toml:"max_chain_depth"`
	LogLevel      string `toml:"log_level"`
	Serve         Serve  `toml:"serve"`
	Graph         Graph  `toml:"graph"`
}

// Serve configures the HTTP API.
type Serve struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// Graph configures dependency graph rendering.
type Graph struct {
	Format string `toml:"format"`
	Cache  bool   `toml:"cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxChainDepth: sheet.DefaultMaxChainDepth,
		LogLevel:      "info",
		Serve:         Serve{Addr: "127.0.0.1:8080", Metrics: true},
		Graph:         Graph{Format: "svg", Cache: true},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error; unknown keys are.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, cgerrors.New(cgerrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxChainDepth < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "max_chain_depth must be >= 0, got %d", c.MaxChainDepth)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "log_level")
	}
	if c.Serve.Addr == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "serve.addr cannot be empty")
	}
	if !slices.Contains(render.Formats, c.Graph.Format) {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "graph.format must be one of %s, got %q",
			strings.Join(render.Formats, ", "), c.Graph.Format)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// SheetOptions returns the sheet options the configuration implies.
func (c Config) SheetOptions() []sheet.Option {
	return []sheet.Option{sheet.WithMaxChainDepth(c.MaxChainDepth)}
}
