package formula

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/position"
)

// Lookup resolves cell references during evaluation. The second result is
// false when nothing is stored at pos; such cells read as zero.
type Lookup interface {
	CellValue(pos position.Position) (Value, bool)
}

// Formula is a parsed expression.
type Formula interface {
	// Evaluate computes the expression against l. Computation failures
	// are returned as error values, never as Go errors.
	Evaluate(l Lookup) Value
	// Expression returns the canonical text without the leading '='.
	Expression() string
	// ReferencedCells returns the valid positions the expression reads,
	// sorted row-major without duplicates.
	ReferencedCells() []position.Position
}

// ParseFunc is the signature of [Parse]. Callers that need to observe
// evaluation substitute their own.
type ParseFunc func(expr string) (Formula, error)

var numericPattern = regexp.MustCompile(`^[-+]?\d*\.?\d+([eE][-+]?\d+)?$`)

// ParseNumber reports whether s is a plain decimal number ("3", "-1.5",
// ".5", "2e10") and returns its value.
func ParseNumber(s string) (float64, bool) {
	if !numericPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Parse parses expr, the text of a formula cell after its '=' marker.
func Parse(expr string) (Formula, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeFormulaParse, err, "parse formula %q", expr)
	}
	p := &parser{toks: toks}
	root, err := p.parse()
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeFormulaParse, err, "parse formula %q", expr)
	}

	var b strings.Builder
	root.render(&b)

	refs := root.cells(nil)
	slices.SortFunc(refs, position.Compare)
	refs = slices.Compact(refs)

	return &formula{root: root, text: b.String(), refs: refs}, nil
}

type formula struct {
	root node
	text string
	refs []position.Position
}

func (f *formula) Evaluate(l Lookup) Value {
	v, cat := f.root.eval(l)
	if cat != 0 {
		return ErrorValue(cat)
	}
	return Number(v)
}

func (f *formula) Expression() string { return f.text }

func (f *formula) ReferencedCells() []position.Position {
	return slices.Clone(f.refs)
}
