package arith

import (
	"errors"
	"fmt"
	"math"
	"pmlang/internal/lexer"
	"pmlang/internal/token"
	"pmlang/internal/util"
	"strconv"
)

var (
	ErrOverflow = errors.New("integer overflow")
	ErrRange    = errors.New("integer literal out of range")
)

// OverflowError reports an operation whose result does not fit in an int64.
type OverflowError struct {
	Op   string
	X, Y int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow in %s(%d, %d)", e.Op, e.X, e.Y)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// RangeError reports a literal too large for an int64.
type RangeError struct {
	Literal string
	Line    int
	Column  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("integer literal %s out of range at %d:%d", e.Literal, e.Line, e.Column)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// findRangeError looks for the first digit run in src that does not fit an
// int64. Runs are read after whitespace stripping, the way the grammar sees
// them.
func findRangeError(src string) *RangeError {
	in := lexer.Whitespace(src)
	for i := 0; i < in.Len(); {
		if !isDigit(in.At(i)) {
			i++
			continue
		}
		run := runLength(in, i)
		lit := in.Advance(i).Take(run)
		if _, err := strconv.ParseInt(lit, 10, 64); errors.Is(err, strconv.ErrRange) {
			line, col := util.GetLineAndColumn(src, lexer.SourcePosition(src, i))
			return &RangeError{Literal: lit, Line: line, Column: col}
		}
		i += run
	}
	return nil
}

func runLength(in token.Stream, from int) int {
	n := 0
	for from+n < in.Len() && isDigit(in.At(from+n)) {
		n++
	}
	return n
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func addInt(x, y int64) (int64, error) {
	s := x + y
	if (x^s)&(y^s) < 0 {
		return 0, &OverflowError{Op: "Sum", X: x, Y: y}
	}
	return s, nil
}

func subInt(x, y int64) (int64, error) {
	d := x - y
	if (x^y)&(x^d) < 0 {
		return 0, &OverflowError{Op: "Sub", X: x, Y: y}
	}
	return d, nil
}

func mulInt(x, y int64) (int64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	p := x * y
	if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, &OverflowError{Op: "Mult", X: x, Y: y}
	}
	return p, nil
}
