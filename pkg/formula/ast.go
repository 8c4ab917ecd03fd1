package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/cellgraph/pkg/position"
)

// Operator precedence used by the renderer. Higher binds tighter.
const (
	precAdditive = iota + 1
	precMultiplicative
	precUnary
	precAtom
)

// node is one vertex of a parsed expression. The set of implementations is
// closed: numberNode, cellNode, unaryNode and binaryNode.
type node interface {
	eval(l Lookup) (float64, ErrorCategory)
	render(b *strings.Builder)
	precedence() int
	cells(dst []position.Position) []position.Position
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(Lookup) (float64, ErrorCategory) { return n.value, 0 }

func (n *numberNode) render(b *strings.Builder) {
	b.WriteString(strconv.FormatFloat(n.value, 'g', -1, 64))
}

func (n *numberNode) precedence() int { return precAtom }

func (n *numberNode) cells(dst []position.Position) []position.Position { return dst }

// cellNode references another cell. raw keeps the source spelling so that
// references outside the grid survive rendering.
type cellNode struct {
	pos position.Position
	raw string
}

func (n *cellNode) eval(l Lookup) (float64, ErrorCategory) {
	if !n.pos.IsValid() {
		return 0, CategoryRef
	}
	v, ok := l.CellValue(n.pos)
	if !ok {
		return 0, 0
	}
	return toNumber(v)
}

func (n *cellNode) render(b *strings.Builder) {
	if n.pos.IsValid() {
		b.WriteString(n.pos.String())
		return
	}
	b.WriteString(n.raw)
}

func (n *cellNode) precedence() int { return precAtom }

func (n *cellNode) cells(dst []position.Position) []position.Position {
	if n.pos.IsValid() {
		dst = append(dst, n.pos)
	}
	return dst
}

type unaryNode struct {
	op      byte
	operand node
}

func (n *unaryNode) eval(l Lookup) (float64, ErrorCategory) {
	v, cat := n.operand.eval(l)
	if cat != 0 {
		return 0, cat
	}
	if n.op == '-' {
		return -v, 0
	}
	return v, 0
}

func (n *unaryNode) render(b *strings.Builder) {
	b.WriteByte(n.op)
	renderOperand(b, n.operand, n.operand.precedence() < precUnary)
}

func (n *unaryNode) precedence() int { return precUnary }

func (n *unaryNode) cells(dst []position.Position) []position.Position {
	return n.operand.cells(dst)
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n *binaryNode) eval(l Lookup) (float64, ErrorCategory) {
	lhs, cat := n.left.eval(l)
	if cat != 0 {
		return 0, cat
	}
	rhs, cat := n.right.eval(l)
	if cat != 0 {
		return 0, cat
	}

	var result float64
	switch n.op {
	case '+':
		result = lhs + rhs
	case '-':
		result = lhs - rhs
	case '*':
		result = lhs * rhs
	case '/':
		if rhs == 0 {
			return 0, CategoryArithmetic
		}
		result = lhs / rhs
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, CategoryArithmetic
	}
	return result, 0
}

func (n *binaryNode) render(b *strings.Builder) {
	prec := n.precedence()
	renderOperand(b, n.left, n.left.precedence() < prec)
	b.WriteByte(n.op)

	// a-(b+c) and a/(b*c) need their parentheses; a+(b-c) and a*(b/c) do not.
	rp := n.right.precedence()
	renderOperand(b, n.right, rp < prec || (rp == prec && (n.op == '-' || n.op == '/')))
}

func (n *binaryNode) precedence() int {
	if n.op == '+' || n.op == '-' {
		return precAdditive
	}
	return precMultiplicative
}

func (n *binaryNode) cells(dst []position.Position) []position.Position {
	return n.right.cells(n.left.cells(dst))
}

func renderOperand(b *strings.Builder, n node, parens bool) {
	if parens {
		b.WriteByte('(')
	}
	n.render(b)
	if parens {
		b.WriteByte(')')
	}
}

// toNumber converts a referenced cell's value into an operand. Empty text
// reads as zero, numeric text as its number, other text as #VALUE!, and
// error values propagate unchanged.
func toNumber(v Value) (float64, ErrorCategory) {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.Number()
		return f, 0
	case KindError:
		e, _ := v.Err()
		return 0, e.Category
	default:
		s, _ := v.Text()
		if s == "" {
			return 0, 0
		}
		if f, ok := ParseNumber(s); ok {
			return f, 0
		}
		return 0, CategoryValue
	}
}
