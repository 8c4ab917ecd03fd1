// Package position defines cell addresses for a sheet grid.
//
// A [Position] is a zero-based (row, column) pair. Positions are bounded by
// [MaxRows] and [MaxCols]; every sheet entry point validates its input with
// [Position.IsValid] before touching storage.
//
// Positions convert to and from A1 notation: column letters followed by a
// one-based row number.
//
//	p, _ := position.Parse("B3") // Position{Row: 2, Col: 1}
//	p.String()                   // "B3"
package position

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
)

const (
	// MaxRows is the number of addressable rows.
	MaxRows = 16384
	// MaxCols is the number of addressable columns.
	MaxCols = 16384

	letters   = 26
	maxLetter = 3 // "XFD" is the widest column name MaxCols needs
)

var (
	// ErrMalformedRef is returned by Parse when the input is not A1 notation.
	ErrMalformedRef = errors.New("malformed cell reference")

	// None is the invalid position returned alongside parse errors.
	None = Position{Row: -1, Col: -1}
)

// Position addresses one cell of the grid. The zero value is A1.
type Position struct {
	Row int
	Col int
}

// Size describes a rectangular area anchored at A1.
type Size struct {
	Rows int
	Cols int
}

// IsValid reports whether p lies inside the grid bounds.
func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < MaxRows && p.Col < MaxCols
}

// String renders p in A1 notation. Invalid positions render as "".
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}
	return ColumnName(p.Col) + strconv.Itoa(p.Row+1)
}

// Compare orders positions row-major. It returns -1, 0 or +1.
func Compare(a, b Position) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Less reports whether a sorts before b in row-major order.
func Less(a, b Position) bool { return Compare(a, b) < 0 }

// ColumnName converts a zero-based column index to its letter name:
// 0 -> "A", 25 -> "Z", 26 -> "AA".
func ColumnName(col int) string {
	if col < 0 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / letters {
		i--
		buf[i] = byte('A' + (n-1)%letters)
	}
	return string(buf[i:])
}

// Parse converts an A1 reference into a Position.
//
// Column letters must be upper case and the row number must be positive.
// A well-formed reference that falls outside the grid (for example
// "ZZZZ1" or "A99999") is not an error: Parse returns an invalid Position
// and a nil error, so callers can distinguish "not a reference" from
// "a reference to nowhere".
func Parse(s string) (Position, error) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return None, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}
	digits := s[i:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return None, fmt.Errorf("%w: %q", ErrMalformedRef, s)
		}
	}
	if digits[0] == '0' {
		return None, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}
	if i > maxLetter || len(digits) > len(strconv.Itoa(MaxRows)) {
		return None, nil
	}

	col := 0
	for j := 0; j < i; j++ {
		col = col*letters + int(s[j]-'A'+1)
	}
	row, _ := strconv.Atoi(digits)

	p := Position{Row: row - 1, Col: col - 1}
	if !p.IsValid() {
		return None, nil
	}
	return p, nil
}

// MustParse is like Parse but panics on malformed or out-of-range input.
// It is intended for tests and static tables.
func MustParse(s string) Position {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	if !p.IsValid() {
		panic(fmt.Sprintf("position %q out of range", s))
	}
	return p
}
