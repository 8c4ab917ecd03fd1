package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

func TestSessionExec(t *testing.T) {
	s := &session{sheet: sheet.New()}

	tests := []struct {
		line     string
		want     string // substring of the output
		wantCode cgerrors.Code
		wantQuit bool
	}{
		{line: "A1 2", want: "A1 = 2"},
		{line: "b1 =A1*3", want: "B1 = 6"},
		{line: "A1 =B1", wantCode: cgerrors.ErrCodeCircularDependency},
		{line: "get B1", want: "uses   A1"},
		{line: "get A1", want: "used by B1"},
		{line: "get C9", want: "C9 is unset"},
		{line: "C1 =1/0", want: "C1 = #ARITHM!"},
		{line: "D1 =1+", wantCode: cgerrors.ErrCodeFormulaParse},
		{line: "clear A1", want: "A1 cleared"},
		{line: "get B1", want: "value  0"},
		{line: "show", want: "B"},
		{line: "show texts", want: "=A1*3"},
		{line: "nonsense here", wantCode: cgerrors.ErrCodeInvalidInput},
		{line: "", want: ""},
		{line: "quit", wantQuit: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out, quit, err := s.exec(tt.line)
			if tt.wantCode != "" {
				if !cgerrors.Is(err, tt.wantCode) {
					t.Errorf("exec(%q) error = %v, want %s", tt.line, err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("exec(%q) error: %v", tt.line, err)
			}
			if quit != tt.wantQuit {
				t.Errorf("exec(%q) quit = %v, want %v", tt.line, quit, tt.wantQuit)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("exec(%q) = %q, want it to contain %q", tt.line, out, tt.want)
			}
		})
	}
}

func TestReplModelUpdate(t *testing.T) {
	m := newReplModel(sheet.New())

	typeLine := func(m tea.Model, line string) tea.Model {
		for _, r := range line {
			if r == ' ' {
				m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
				continue
			}
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		return m
	}

	var model tea.Model = m
	model = typeLine(model, "A1 41x")
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := string(model.(ReplModel).input); got != "A1 41" {
		t.Fatalf("input = %q, want %q", got, "A1 41")
	}

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Errorf("Update(enter) returned a command for a cell edit")
	}
	if view := model.View(); !strings.Contains(view, "A1 = 41") {
		t.Errorf("View() = %q, want the edit result", view)
	}

	model = typeLine(model, "quit")
	model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Update(quit) returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Update(quit) command = %T, want tea.QuitMsg", cmd())
	}
	if !model.(ReplModel).done {
		t.Error("model not marked done after quit")
	}
}

func TestReplModelHistoryBounded(t *testing.T) {
	m := newReplModel(sheet.New())
	for range replMaxHistory + 50 {
		m.push("line")
	}
	if len(m.lines) != replMaxHistory {
		t.Errorf("len(lines) = %d, want %d", len(m.lines), replMaxHistory)
	}
}
