package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// REPL styles
var (
	replPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	replInputStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	replErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	replHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	replPrompt     = "› "
	replMaxHistory = 200
	replHelp       = "REF TEXT set · clear REF · get REF · show [texts] · help · quit"
)

// replCommand creates the interactive repl command.
func (c *CLI) replCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit a sheet interactively",
		Long: `Start an interactive session over an empty sheet.

Commands:
  A1 =B1+1     set a cell (anything after the reference is the cell text)
  clear A1     clear a cell
  get A1       show a cell's text, value and dependencies
  show         print the sheet values (show texts prints stored texts)
  quit         leave the session`,
		Example: `  cellgraph repl
  cellgraph repl --from budget.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := c.loadSheet(from, false)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newReplModel(s), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "script to apply before the session starts")

	return cmd
}

// =============================================================================
// Session - command interpreter
// =============================================================================

// session interprets REPL lines against one sheet.
type session struct {
	sheet *sheet.Sheet
}

// exec runs one line and returns its output. quit reports a request to end
// the session. Rejected edits are returned as errors; the sheet is unchanged.
func (s *session) exec(line string) (out string, quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimLeft(rest, " ")

	switch strings.ToLower(word) {
	case "quit", "exit", "q":
		return "", true, nil
	case "help", "?":
		return replHelp, false, nil
	case "show":
		return sheetTable(s.sheet, rest == "texts"), false, nil
	case "clear":
		pos, err := cgerrors.ValidateCellRef(rest)
		if err != nil {
			return "", false, err
		}
		if err := s.sheet.ClearCell(pos); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s cleared", pos), false, nil
	case "get":
		pos, err := cgerrors.ValidateCellRef(rest)
		if err != nil {
			return "", false, err
		}
		c, err := s.sheet.Cell(pos)
		if err != nil {
			return "", false, err
		}
		if c == nil {
			return fmt.Sprintf("%s is unset", pos), false, nil
		}
		return describeCell(c), false, nil
	}

	// Anything else is "REF TEXT".
	pos, err := cgerrors.ValidateCellRef(word)
	if err != nil {
		return "", false, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "unknown command %q", word)
	}
	if err := s.sheet.SetCell(pos, rest); err != nil {
		return "", false, err
	}
	c, _ := s.sheet.Cell(pos)
	if c == nil {
		return fmt.Sprintf("%s = ", pos), false, nil
	}
	return fmt.Sprintf("%s = %s", pos, c.Value()), false, nil
}

// describeCell renders a cell for the get command.
func describeCell(c *sheet.Cell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", c.Position(), c.Kind())
	fmt.Fprintf(&b, "\n  text   %q", c.Text())
	fmt.Fprintf(&b, "\n  value  %s", c.Value())
	if refs := c.ReferencedCells(); len(refs) > 0 {
		fmt.Fprintf(&b, "\n  uses   %s", joinPositions(refs))
	}
	if deps := c.Dependents(); len(deps) > 0 {
		fmt.Fprintf(&b, "\n  used by %s", joinPositions(deps))
	}
	return b.String()
}

func joinPositions[T fmt.Stringer](ps []T) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// ReplModel - bubbletea front end
// =============================================================================

// ReplModel is the bubbletea model for the interactive session.
type ReplModel struct {
	session *session
	input   []rune
	lines   []string
	done    bool
}

func newReplModel(s *sheet.Sheet) ReplModel {
	return ReplModel{
		session: &session{sheet: s},
		lines:   []string{replHelpStyle.Render(replHelp)},
	}
}

func (m ReplModel) Init() tea.Cmd {
	return nil
}

func (m ReplModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
		m.done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	case tea.KeyEnter:
		line := string(m.input)
		m.input = m.input[:0]
		m.push(replPromptStyle.Render(replPrompt) + replInputStyle.Render(line))

		out, quit, err := m.session.exec(line)
		switch {
		case err != nil:
			m.push(replErrorStyle.Render(iconError + " " + cgerrors.UserMessage(err)))
		case out != "":
			m.push(out)
		}
		if quit {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// push appends output, keeping at most replMaxHistory entries.
func (m *ReplModel) push(s string) {
	m.lines = append(m.lines, s)
	if over := len(m.lines) - replMaxHistory; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m ReplModel) View() string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.done {
		return b.String()
	}
	b.WriteString(replPromptStyle.Render(replPrompt))
	b.WriteString(replInputStyle.Render(string(m.input)))
	b.WriteString(StyleDim.Render("█"))
	return b.String()
}
