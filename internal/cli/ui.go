package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cellgraph/pkg/formula"
	"github.com/matzehuels/cellgraph/pkg/position"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - numbers, headings
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for formula error values.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Sheet Tables
// =============================================================================

// sheetTable renders the printable area of s as a bordered table with
// column letters across the top and row numbers down the side. With texts
// set, cells show their stored text instead of their value.
func sheetTable(s *sheet.Sheet, texts bool) string {
	size := s.PrintableSize()
	if size.Rows == 0 || size.Cols == 0 {
		return StyleDim.Render("(empty sheet)")
	}

	headers := make([]string, size.Cols+1)
	for col := range size.Cols {
		headers[col+1] = position.ColumnName(col)
	}

	rows := make([][]string, size.Rows)
	kinds := make([][]formula.Kind, size.Rows)
	for row := range size.Rows {
		rows[row] = make([]string, size.Cols+1)
		kinds[row] = make([]formula.Kind, size.Cols+1)
		rows[row][0] = strconv.Itoa(row + 1)
		for col := range size.Cols {
			c, _ := s.Cell(position.Position{Row: row, Col: col})
			if c == nil {
				continue
			}
			if texts {
				rows[row][col+1] = c.Text()
				continue
			}
			v := c.Value()
			rows[row][col+1] = v.String()
			kinds[row][col+1] = v.Kind()
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return styleHeader
			}
			if texts {
				return styleCell
			}
			switch kinds[row][col] {
			case formula.KindNumber:
				return styleCell.Foreground(colorCyan).Align(lipgloss.Right)
			case formula.KindError:
				return styleCell.Foreground(colorRed)
			}
			return styleCell.Foreground(colorWhite)
		})
	return t.Render()
}

// writeSheet writes s in the requested output mode: "table" renders
// sheetTable, "values" and "texts" write tab-separated rows.
func writeSheet(w io.Writer, s *sheet.Sheet, mode string) error {
	switch mode {
	case outputValues:
		return s.PrintValues(w)
	case outputTexts:
		return s.PrintTexts(w)
	default:
		_, err := fmt.Fprintln(w, sheetTable(s, false))
		return err
	}
}
