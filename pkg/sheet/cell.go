package sheet

import (
	"fmt"
	"slices"
	"strings"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/formula"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/position"
)

const (
	// EscapeMarker forces the rest of the text to be read as a string.
	EscapeMarker = '\''
	// FormulaMarker introduces a formula when followed by an expression.
	FormulaMarker = '='
)

// Kind names the content variant a cell holds.
type Kind string

const (
	KindEmpty   Kind = "empty"
	KindText    Kind = "text"
	KindFormula Kind = "formula"
)

// content is the closed set of cell states: emptyContent, textContent and
// formulaContent.
type content interface {
	kind() Kind
}

type emptyContent struct{}

type textContent struct {
	text string
}

type formulaContent struct {
	f formula.Formula
}

func (emptyContent) kind() Kind   { return KindEmpty }
func (textContent) kind() Kind    { return KindText }
func (formulaContent) kind() Kind { return KindFormula }

// Cell is one slot of a [Sheet]. Cells are owned by their sheet and reach
// each other only through it; edges are stored as positions.
type Cell struct {
	sheet   *Sheet
	pos     position.Position
	content content

	deps       posSet // cells this cell's formula reads
	dependents posSet // cells whose formulas read this cell

	cache  formula.Value
	cached bool
}

func newCell(s *Sheet, pos position.Position) *Cell {
	return &Cell{
		sheet:      s,
		pos:        pos,
		content:    emptyContent{},
		deps:       posSet{},
		dependents: posSet{},
	}
}

// Position returns where the cell lives.
func (c *Cell) Position() position.Position { return c.pos }

// Kind reports the content variant.
func (c *Cell) Kind() Kind { return c.content.kind() }

// IsEmpty reports whether the cell holds no content. Empty cells may still
// be kept as edge targets of formulas elsewhere.
func (c *Cell) IsEmpty() bool {
	_, ok := c.content.(emptyContent)
	return ok
}

// Set replaces the cell's content.
//
//   - "" empties the cell
//   - a leading ' stores text that always reads as a string
//   - a leading = followed by an expression stores a formula
//   - anything else is text, read as a number when it looks like one
//
// A formula that fails to parse, would close a cycle or would exceed the
// sheet's chain depth is rejected and the sheet is left exactly as it was.
// A cell whose slot was released by [Sheet.ClearCell] can no longer be set.
func (c *Cell) Set(text string) error {
	err := c.checkAttached()
	switch {
	case err != nil:
	case text == "":
		c.replace(emptyContent{})
	case text[0] == FormulaMarker && len(text) > 1:
		err = c.setFormula(text[1:])
	default:
		c.replace(textContent{text: text})
	}

	if err != nil {
		c.sheet.hooks.OnRejected(string(cgerrors.GetCode(err)))
		return err
	}
	c.sheet.hooks.OnSet(observability.ContentKind(c.Kind()))
	return nil
}

// Clear empties the cell, dropping its outgoing edges. Cells depending on
// it keep their edges and read it as empty from now on. Unlike
// [Sheet.ClearCell], the slot is kept even when nothing references it.
func (c *Cell) Clear() error {
	if err := c.checkAttached(); err != nil {
		return err
	}
	c.replace(emptyContent{})
	return nil
}

// checkAttached fails once the sheet no longer stores c at its position.
func (c *Cell) checkAttached() error {
	if c.sheet.cellAt(c.pos) != c {
		return cgerrors.New(cgerrors.ErrCodeNotFound, "cell %s was released from its sheet", c.pos)
	}
	return nil
}

func (c *Cell) replace(next content) {
	c.sheet.dropDependencies(c)
	c.content = next
	c.sheet.invalidate(c)
}

func (c *Cell) setFormula(expr string) error {
	f, err := c.sheet.parse(expr)
	if err != nil {
		if cgerrors.GetCode(err) == "" {
			err = cgerrors.Wrap(cgerrors.ErrCodeFormulaParse, err, "parse formula %q", expr)
		}
		c.sheet.logger.Debug("formula rejected", "cell", c.pos, "err", err)
		return err
	}

	tx := c.sheet.swapDependencies(c, f.ReferencedCells())
	if err := c.sheet.checkDependencies(c); err != nil {
		c.sheet.rollback(tx)
		c.sheet.logger.Debug("formula rejected", "cell", c.pos, "formula", expr, "err", err)
		return err
	}

	c.content = formulaContent{f: f}
	c.sheet.invalidate(c)
	return nil
}

// Value returns the cell's current value. Formula results are cached
// until the cell or anything it depends on changes.
func (c *Cell) Value() formula.Value {
	switch ct := c.content.(type) {
	case emptyContent:
		return formula.String("")
	case textContent:
		if ct.text[0] == EscapeMarker {
			return formula.String(ct.text[1:])
		}
		if f, ok := formula.ParseNumber(ct.text); ok {
			return formula.Number(f)
		}
		return formula.String(ct.text)
	case formulaContent:
		if !c.cached {
			c.cache = ct.f.Evaluate(c.sheet)
			c.cached = true
			c.sheet.hooks.OnEvaluate()
		}
		return c.cache
	default:
		panic(fmt.Sprintf("sheet: unknown cell content %T", ct))
	}
}

// Text returns the text that reproduces the cell: verbatim for text
// (escape marker included) and "=" plus the canonical expression for
// formulas.
func (c *Cell) Text() string {
	switch ct := c.content.(type) {
	case emptyContent:
		return ""
	case textContent:
		return ct.text
	case formulaContent:
		var b strings.Builder
		b.WriteByte(FormulaMarker)
		b.WriteString(ct.f.Expression())
		return b.String()
	default:
		panic(fmt.Sprintf("sheet: unknown cell content %T", ct))
	}
}

// ReferencedCells returns the positions a formula reads, sorted and
// without duplicates. It is nil for non-formula cells.
func (c *Cell) ReferencedCells() []position.Position {
	switch ct := c.content.(type) {
	case emptyContent, textContent:
		return nil
	case formulaContent:
		return ct.f.ReferencedCells()
	default:
		panic(fmt.Sprintf("sheet: unknown cell content %T", ct))
	}
}

// Dependents returns the positions of cells whose formulas read this
// cell, sorted row-major.
func (c *Cell) Dependents() []position.Position {
	return c.dependents.sorted()
}

// posSet is a set of cell handles.
type posSet map[position.Position]struct{}

func (s posSet) sorted() []position.Position {
	if len(s) == 0 {
		return nil
	}
	out := make([]position.Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, position.Compare)
	return out
}
