package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/position"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

const sample = `
[[op]]
cell = "A1"
text = "1"

[[op]]
cell = "b1"
text = "=A1*2"

[[op]]
cell = "A1"
text = "=B1"

[[op]]
action = "clear"
cell = "A1"
`

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(s.Ops) != 4 {
		t.Fatalf("len(Ops) = %d, want 4", len(s.Ops))
	}
	if s.Ops[0].Action != ActionSet || s.Ops[3].Action != ActionClear {
		t.Errorf("actions = %q, %q, want set, clear", s.Ops[0].Action, s.Ops[3].Action)
	}
	if got := s.Ops[1].Position(); got != position.MustParse("B1") {
		t.Errorf("Ops[1].Position() = %v, want B1", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code cgerrors.Code
	}{
		{"bad toml", `[[op]`, cgerrors.ErrCodeInvalidInput},
		{"unknown key", "[[op]]\ncell = \"A1\"\nvalue = 1", cgerrors.ErrCodeInvalidInput},
		{"unknown action", "[[op]]\naction = \"undo\"\ncell = \"A1\"", cgerrors.ErrCodeInvalidInput},
		{"clear with text", "[[op]]\naction = \"clear\"\ncell = \"A1\"\ntext = \"x\"", cgerrors.ErrCodeInvalidInput},
		{"missing cell", "[[op]]\ntext = \"x\"", cgerrors.ErrCodeInvalidInput},
		{"malformed cell", "[[op]]\ncell = \"1A\"", cgerrors.ErrCodeInvalidInput},
		{"out of grid", "[[op]]\ncell = \"ZZZZ1\"", cgerrors.ErrCodeInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !cgerrors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestApply(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	sh := sheet.New()
	results := s.Apply(sh, ApplyOptions{})
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	failed := Failed(results)
	if len(failed) != 1 || !cgerrors.Is(failed[0].Err, cgerrors.ErrCodeCircularDependency) {
		t.Fatalf("Failed() = %v, want one circular dependency", failed)
	}

	// A1 is referenced by B1, so clearing keeps it as an empty placeholder.
	a1, _ := sh.Cell(position.MustParse("A1"))
	if a1 == nil || !a1.IsEmpty() {
		t.Errorf("A1 should be an empty placeholder")
	}
	b1, _ := sh.Cell(position.MustParse("B1"))
	if got := b1.Value().String(); got != "0" {
		t.Errorf("B1 = %s, want 0", got)
	}
}

func TestApplyStrict(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	sh := sheet.New()
	results := s.Apply(sh, ApplyOptions{Strict: true})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3 (stop at the cycle)", len(results))
	}
	a1, _ := sh.Cell(position.MustParse("A1"))
	if got := a1.Text(); got != "1" {
		t.Errorf("A1 Text() = %q, want 1", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edits.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(s.Ops) != 4 {
		t.Errorf("len(Ops) = %d, want 4", len(s.Ops))
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !cgerrors.Is(err, cgerrors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %s", err, cgerrors.ErrCodeFileNotFound)
	}
	if _, err := Load(filepath.Join(dir, "edits.json")); !cgerrors.Is(err, cgerrors.ErrCodeInvalidPath) {
		t.Errorf("Load(.json) error = %v, want %s", err, cgerrors.ErrCodeInvalidPath)
	}
}
