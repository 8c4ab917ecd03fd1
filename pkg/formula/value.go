package formula

import (
	"strconv"
)

// Kind distinguishes the variants of a [Value].
type Kind uint8

const (
	// KindString is a text value. Empty cells read as the empty string.
	KindString Kind = iota
	// KindNumber is a float64 value.
	KindNumber
	// KindError is a computation-time failure such as #ARITHM!.
	KindError
)

// ErrorCategory classifies evaluation failures.
type ErrorCategory uint8

const (
	// CategoryRef is a reference to a position outside the grid.
	CategoryRef ErrorCategory = iota + 1
	// CategoryValue is an operand that cannot be read as a number.
	CategoryValue
	// CategoryArithmetic is division by zero or a non-finite result.
	CategoryArithmetic
)

var categoryCodes = map[ErrorCategory]string{
	CategoryRef:        "#REF!",
	CategoryValue:      "#VALUE!",
	CategoryArithmetic: "#ARITHM!",
}

// FormulaError is the payload of an error [Value].
type FormulaError struct {
	Category ErrorCategory
}

// Error returns the spreadsheet code, e.g. "#VALUE!".
func (e FormulaError) Error() string {
	if code, ok := categoryCodes[e.Category]; ok {
		return code
	}
	return "#ERROR!"
}

// Value is the result of reading a cell: a number, a string or a
// formula error. The zero value is the empty string.
type Value struct {
	kind Kind
	num  float64
	str  string
	err  FormulaError
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a text Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// ErrorValue returns an error Value of the given category.
func ErrorValue(c ErrorCategory) Value {
	return Value{kind: KindError, err: FormulaError{Category: c}}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Text returns the string payload and whether v is a string.
func (v Value) Text() (string, bool) { return v.str, v.kind == KindString }

// Err returns the error payload and whether v is an error.
func (v Value) Err() (FormulaError, bool) { return v.err, v.kind == KindError }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindError:
		return v.err == o.err
	default:
		return v.str == o.str
	}
}

// String formats v for display. Numbers use six significant digits.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindError:
		return v.err.Error()
	default:
		return v.str
	}
}

// FormatNumber renders f with six significant digits: 3.14, 0.333333,
// 1e+06.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
