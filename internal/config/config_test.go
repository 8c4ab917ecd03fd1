package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
max_chain_depth = 100
log_level = "debug"

[graph]
format = "png"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxChainDepth != 100 || cfg.Level() != log.DebugLevel || cfg.Graph.Format != "png" {
		t.Errorf("Load() = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Serve != Default().Serve || !cfg.Graph.Cache {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `max_chain_depth = `},
		{"unknown key", `colour = "blue"`},
		{"negative depth", `max_chain_depth = -1`},
		{"bad level", `log_level = "loud"`},
		{"bad format", "[graph]\nformat = \"gif\""},
		{"empty addr", "[serve]\naddr = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !cgerrors.Is(err, cgerrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want %s", err, cgerrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "cellgraph", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
