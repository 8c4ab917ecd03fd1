// Package cli implements the cellgraph command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/internal/config"
	"github.com/matzehuels/cellgraph/pkg/buildinfo"
	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/script"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cellgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the config file named by --config, or the default
// location when the flag is unset.
func (c *CLI) LoadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.SetLevel(cfg.Level())
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "cellgraph evaluates spreadsheet cells and their dependency graph",
		Long:         `cellgraph is a spreadsheet engine for the terminal: it applies cell edits, rejects circular references, keeps formula values cached and invalidates them along the dependency graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.LoadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cellgraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.evalCommand())
	root.AddCommand(c.replCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Sheet Factory
// =============================================================================

// newSheet creates a sheet configured from c.Config.
func (c *CLI) newSheet() *sheet.Sheet {
	opts := append(c.Config.SheetOptions(), sheet.WithLogger(c.Logger))
	return sheet.New(opts...)
}

// loadSheet builds a sheet from the script at path. An empty path yields an
// empty sheet. Failed operations are logged and skipped unless strict.
func (c *CLI) loadSheet(path string, strict bool) (*sheet.Sheet, []script.Result, error) {
	s := c.newSheet()
	if path == "" {
		return s, nil, nil
	}
	sc, err := script.Load(path)
	if err != nil {
		return nil, nil, err
	}
	results := sc.Apply(s, script.ApplyOptions{Strict: strict})
	for _, r := range script.Failed(results) {
		c.Logger.Warn("edit rejected", "cell", r.Op.Cell, "text", r.Op.Text, "err", r.Err)
		if strict {
			return nil, results, r.Err
		}
	}
	return s, results, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cellgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
