// Package formula parses and evaluates cell formulas.
//
// A formula is the text of a cell after its leading '=' marker. The
// grammar covers numbers, A1 cell references, the binary operators
// + - * / and unary + -, with parentheses for grouping:
//
//	f, err := formula.Parse("(A1+B2)*2")
//	v := f.Evaluate(lookup)
//
// # Values
//
// Evaluation produces a [Value]: a number, a string or an error value.
// Computation failures are values, not Go errors:
//
//   - #REF!    a reference outside the grid
//   - #VALUE!  a referenced cell holds text that is not a number
//   - #ARITHM! division by zero or a non-finite result
//
// Referenced cells are read through a [Lookup]. Missing and empty cells
// read as zero, numeric text reads as its number, and an error value in a
// referenced cell propagates.
//
// # Canonical Text
//
// [Formula.Expression] renders the parsed tree with only the parentheses
// that precedence requires, so "=(1+2)*3" keeps them while "=1+(2+3)"
// becomes "1+2+3".
package formula
