package sheet

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/formula"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/position"
)

// DefaultMaxChainDepth is the longest dependency chain, in cells, a sheet
// accepts unless configured otherwise.
const DefaultMaxChainDepth = 4096

// Sheet is a sparse grid of cells and the dependency graph between them.
//
// A Sheet is not safe for concurrent use. Callers that share one across
// goroutines must serialize access, including reads: reading a formula
// value may fill its cache.
type Sheet struct {
	id    string
	cells [][]*Cell

	parse         formula.ParseFunc
	maxChainDepth int
	logger        *log.Logger
	hooks         observability.SheetHooks
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option { return func(s *Sheet) { s.logger = l } }

// WithParser replaces the formula parser.
func WithParser(p formula.ParseFunc) Option { return func(s *Sheet) { s.parse = p } }

// WithMaxChainDepth bounds the longest dependency chain. n <= 0 disables
// the check.
func WithMaxChainDepth(n int) Option { return func(s *Sheet) { s.maxChainDepth = n } }

// WithHooks overrides the globally registered sheet hooks.
func WithHooks(h observability.SheetHooks) Option { return func(s *Sheet) { s.hooks = h } }

// New creates an empty sheet.
func New(opts ...Option) *Sheet {
	s := &Sheet{
		id:            uuid.NewString(),
		parse:         formula.Parse,
		maxChainDepth: DefaultMaxChainDepth,
		logger:        log.New(io.Discard),
		hooks:         observability.Sheet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hooks == nil {
		s.hooks = observability.NoopSheetHooks{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.With("sheet", s.id[:8])
	return s
}

// ID returns a random identifier assigned at creation.
func (s *Sheet) ID() string { return s.id }

// SetCell sets the content of the cell at pos, creating it if needed. On
// error the sheet is unchanged.
func (s *Sheet) SetCell(pos position.Position, text string) error {
	if err := checkPosition(pos); err != nil {
		s.hooks.OnRejected(string(cgerrors.ErrCodeInvalidPosition))
		return err
	}

	c := s.cellAt(pos)
	created := c == nil
	if created {
		c = s.materialize(pos)
	}
	if err := c.Set(text); err != nil {
		if created && len(c.dependents) == 0 {
			s.release(pos)
		}
		return err
	}
	return nil
}

// Cell returns the cell at pos, or nil when nothing is stored there.
func (s *Sheet) Cell(pos position.Position) (*Cell, error) {
	if err := checkPosition(pos); err != nil {
		return nil, err
	}
	return s.cellAt(pos), nil
}

// ClearCell empties the cell at pos. The slot is released unless other
// formulas still reference the cell, in which case it stays as an empty
// placeholder. Clearing an unset position is a no-op.
func (s *Sheet) ClearCell(pos position.Position) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	c := s.cellAt(pos)
	if c == nil {
		return nil
	}
	c.replace(emptyContent{})

	released := len(c.dependents) == 0
	if released {
		s.release(pos)
	}
	s.hooks.OnClear(released)
	return nil
}

// CellValue implements [formula.Lookup]. Positions outside the grid read
// as #REF!.
func (s *Sheet) CellValue(pos position.Position) (formula.Value, bool) {
	if !pos.IsValid() {
		return formula.ErrorValue(formula.CategoryRef), true
	}
	c := s.cellAt(pos)
	if c == nil {
		return formula.Value{}, false
	}
	return c.Value(), true
}

// Cells returns every stored cell in row-major order, placeholders
// included.
func (s *Sheet) Cells() []*Cell {
	var out []*Cell
	for _, row := range s.cells {
		for _, c := range row {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func checkPosition(pos position.Position) error {
	if !pos.IsValid() {
		return cgerrors.New(cgerrors.ErrCodeInvalidPosition,
			"position (%d, %d) is outside the %dx%d grid", pos.Row, pos.Col, position.MaxRows, position.MaxCols)
	}
	return nil
}

// cellAt returns the cell stored at a valid pos, or nil.
func (s *Sheet) cellAt(pos position.Position) *Cell {
	if pos.Row >= len(s.cells) || pos.Col >= len(s.cells[pos.Row]) {
		return nil
	}
	return s.cells[pos.Row][pos.Col]
}

// materialize stores a new empty cell at pos, growing storage as needed.
func (s *Sheet) materialize(pos position.Position) *Cell {
	if pos.Row >= len(s.cells) {
		s.cells = append(s.cells, make([][]*Cell, pos.Row+1-len(s.cells))...)
	}
	row := s.cells[pos.Row]
	if pos.Col >= len(row) {
		row = append(row, make([]*Cell, pos.Col+1-len(row))...)
		s.cells[pos.Row] = row
	}
	c := newCell(s, pos)
	row[pos.Col] = c
	return c
}

func (s *Sheet) release(pos position.Position) {
	s.cells[pos.Row][pos.Col] = nil
	s.logger.Debug("cell released", "cell", pos)
}
