package dispatch

import (
	"errors"
	"fmt"
	"pmlang/internal/ast"
)

var (
	ErrStructural     = errors.New("structural ast error")
	ErrUnknownPattern = errors.New("unknown pattern")
)

// StructuralError is returned when Dispatch is handed something other than
// a tuple.
type StructuralError struct {
	Table string
	Value ast.Node
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: expected a tuple, got %s", e.Table, describe(e.Value))
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// UnknownPatternError is returned when no rule matches and the table has no
// fallback. Node is the tree that could not be dispatched.
type UnknownPatternError struct {
	Table string
	Node  ast.Node
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("%s: unknown pattern %s", e.Table, ast.Format(e.Node))
}

func (e *UnknownPatternError) Is(target error) bool {
	return target == ErrUnknownPattern
}

func describe(n ast.Node) string {
	if n == nil {
		return "nil"
	}
	return fmt.Sprintf("%s %s", n.Kind(), n.String())
}
