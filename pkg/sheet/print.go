package sheet

import (
	"bufio"
	"io"

	"github.com/matzehuels/cellgraph/pkg/position"
)

// PrintableSize returns the smallest area anchored at A1 that covers every
// stored cell, placeholders included.
func (s *Sheet) PrintableSize() position.Size {
	var size position.Size
	for r, row := range s.cells {
		for c, cell := range row {
			if cell != nil {
				size.Rows = max(size.Rows, r+1)
				size.Cols = max(size.Cols, c+1)
			}
		}
	}
	return size
}

// PrintValues writes the printable area as tab-separated values, one line
// per row. Unset cells print as nothing.
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.print(w, func(c *Cell) string { return c.Value().String() })
}

// PrintTexts is like PrintValues but writes each cell's text.
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.print(w, (*Cell).Text)
}

func (s *Sheet) print(w io.Writer, field func(*Cell) string) error {
	bw := bufio.NewWriter(w)
	size := s.PrintableSize()
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			if c > 0 {
				bw.WriteByte('\t')
			}
			if cell := s.cellAt(position.Position{Row: r, Col: c}); cell != nil {
				bw.WriteString(field(cell))
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
