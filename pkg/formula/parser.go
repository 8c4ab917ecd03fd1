package formula

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/cellgraph/pkg/position"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokCell
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	at   int
}

// tokenize splits an expression into tokens, skipping whitespace.
func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			toks = append(toks, token{tokOp, src[i : i+1], i})
			i++
		case ch == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case ch == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case isDigit(ch) || ch == '.':
			j := scanNumber(src, i)
			if j == i {
				return nil, fmt.Errorf("unexpected %q at offset %d", ch, i)
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case ch >= 'A' && ch <= 'Z':
			j := i
			for j < len(src) && src[j] >= 'A' && src[j] <= 'Z' {
				j++
			}
			k := j
			for k < len(src) && isDigit(src[k]) {
				k++
			}
			if k == j {
				return nil, fmt.Errorf("unknown name %q at offset %d", src[i:j], i)
			}
			toks = append(toks, token{tokCell, src[i:k], i})
			i = k
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", ch, i)
		}
	}
	return append(toks, token{tokEOF, "", len(src)}), nil
}

// scanNumber returns the end offset of the numeric literal starting at i:
// digits, an optional fraction and an optional exponent.
func scanNumber(src string, i int) int {
	j := i
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	if j < len(src) && src[j] == '.' {
		j++
		for j < len(src) && isDigit(src[j]) {
			j++
		}
	}
	if j == i || (j == i+1 && src[i] == '.') {
		return i
	}
	if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
		k := j + 1
		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}
		if k < len(src) && isDigit(src[k]) {
			for k < len(src) && isDigit(src[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// parser is a recursive-descent parser over the grammar
//
//	expr   := term (('+' | '-') term)*
//	term   := unary (('*' | '/') unary)*
//	unary  := ('+' | '-') unary | atom
//	atom   := number | cell | '(' expr ')'
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parse() (node, error) {
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("empty expression")
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.at)
	}
	return n, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.text[0], operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at offset %d", t.text, t.at)
		}
		return &numberNode{value: v}, nil
	case tokCell:
		pos, err := position.Parse(t.text)
		if err != nil {
			pos = position.None
		}
		return &cellNode{pos: pos, raw: t.text}, nil
	case tokLParen:
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("missing ')' at offset %d", closing.at)
		}
		return n, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.at)
	}
}
