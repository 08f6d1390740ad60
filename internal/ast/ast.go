package ast

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindTuple
	// KindPlaceholder marks pattern-only nodes (variables, wildcards,
	// captures). They never appear in a tree produced by a grammar.
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindTuple:
		return "tuple"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// The base Node interface. A node is either a leaf (Str, Int) or a Tuple
// whose first element is, by convention, its tag.
type Node interface {
	Kind() Kind
	String() string
}

type Str string

func (s Str) Kind() Kind     { return KindString }
func (s Str) String() string { return strconv.Quote(string(s)) }

type Int int64

func (i Int) Kind() Kind     { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

type Tuple []Node

// T builds a tagged tuple (tag, children...).
func T(tag string, children ...Node) Tuple {
	t := make(Tuple, 0, len(children)+1)
	t = append(t, Str(tag))
	return append(t, children...)
}

func (t Tuple) Kind() Kind { return KindTuple }

func (t Tuple) String() string {
	var out strings.Builder
	out.WriteString("(")
	for i, n := range t {
		if i > 0 {
			out.WriteString(", ")
		}
		if n == nil {
			out.WriteString("nil")
			continue
		}
		out.WriteString(n.String())
	}
	out.WriteString(")")
	return out.String()
}

// Tag returns the string at position 0, if there is one.
func (t Tuple) Tag() (string, bool) {
	if len(t) == 0 {
		return "", false
	}
	s, ok := t[0].(Str)
	return string(s), ok
}

// Children returns every element after the tag.
func (t Tuple) Children() Tuple {
	if len(t) == 0 {
		return Tuple{}
	}
	return t[1:]
}

func AsTuple(n Node) (Tuple, bool) {
	t, ok := n.(Tuple)
	return t, ok
}

func AsInt(n Node) (int64, bool) {
	i, ok := n.(Int)
	return int64(i), ok
}

func AsStr(n Node) (string, bool) {
	s, ok := n.(Str)
	return string(s), ok
}

// HasTag reports whether n is a tuple tagged with tag.
func HasTag(n Node, tag string) bool {
	t, ok := n.(Tuple)
	if !ok {
		return false
	}
	got, ok := t.Tag()
	return ok && got == tag
}

// Equal compares two trees structurally.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Format renders n in canonical tuple notation.
func Format(n Node) string {
	if n == nil {
		return "nil"
	}
	return n.String()
}
