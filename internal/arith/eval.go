package arith

import (
	"errors"
	"fmt"
	"pmlang/internal/ast"
	"pmlang/internal/dispatch"
	"pmlang/internal/grammar"
	"pmlang/internal/pattern"
)

var (
	lowerTable    *dispatch.Table[ast.Node]
	evalTable     *dispatch.Table[ast.Node]
	simplifyTable *dispatch.Table[ast.Node]
	parser        grammar.Parser
)

func init() {
	parser = Grammar()
	lowerTable = dispatch.MustNew("lower", lowerRules())
	evalTable = dispatch.MustNew("eval", evalRules())
	simplifyTable = dispatch.MustNew("simplify", simplifyRules())
}

// Num builds the value-tree leaf ("Num", n).
func Num(n int64) ast.Tuple {
	return ast.T("Num", ast.Int(n))
}

// Value extracts n from ("Num", n).
func Value(node ast.Node) (int64, error) {
	t, ok := node.(ast.Tuple)
	if !ok || len(t) != 2 || !ast.HasTag(t, "Num") {
		return 0, fmt.Errorf("expected (\"Num\", n), got %s", ast.Format(node))
	}
	n, ok := ast.AsInt(t[1])
	if !ok {
		return 0, fmt.Errorf("expected an integer in %s", ast.Format(node))
	}
	return n, nil
}

// Parse turns source text into a parse tree. Input rejected only because a
// literal does not fit an int64 yields a *RangeError.
func Parse(src string) (ast.Node, error) {
	tree, err := grammar.ParseString(parser, src)
	if errors.Is(err, grammar.ErrSyntax) {
		if rerr := findRangeError(src); rerr != nil {
			return nil, rerr
		}
	}
	return tree, err
}

// Lower rewrites a parse tree (EXPR/OP/GROUP nodes) into a value tree built
// from Sum, Mult, Sub and Num.
func Lower(tree ast.Node) (ast.Node, error) {
	return lowerTable.Dispatch(tree)
}

// Eval folds a value tree down to ("Num", n). Results that do not fit an
// int64 fail with an *OverflowError.
func Eval(tree ast.Node) (ast.Node, error) {
	return evalTable.Dispatch(tree)
}

// Simplify removes multiplications by one and additions of zero, leaving
// every other node as it was. Passes repeat until the tree stops changing,
// since collapsing a child can expose a new identity in its parent.
func Simplify(tree ast.Node) (ast.Node, error) {
	for {
		next, err := simplifyTable.Dispatch(tree)
		if err != nil {
			return nil, err
		}
		if ast.Equal(next, tree) {
			return next, nil
		}
		tree = next
	}
}

// Run parses, lowers and evaluates src.
func Run(src string) (int64, error) {
	tree, err := Parse(src)
	if err != nil {
		return 0, err
	}
	lowered, err := Lower(tree)
	if err != nil {
		return 0, err
	}
	result, err := Eval(lowered)
	if err != nil {
		return 0, err
	}
	return Value(result)
}

func lowerRules() []dispatch.Rule[ast.Node] {
	l, r, x := pattern.V("l"), pattern.V("r"), pattern.V("x")

	passThrough := func(args ...ast.Node) (ast.Node, error) {
		return lowerTable.Dispatch(args[0])
	}
	binary := func(tag string) func(args ...ast.Node) (ast.Node, error) {
		return func(args ...ast.Node) (ast.Node, error) {
			left, err := lowerTable.Dispatch(args[0])
			if err != nil {
				return nil, err
			}
			right, err := lowerTable.Dispatch(args[1])
			if err != nil {
				return nil, err
			}
			return ast.T(tag, left, right), nil
		}
	}

	return []dispatch.Rule[ast.Node]{
		{Pattern: ast.T("EXPR", x), Params: []string{"x"}, Handler: passThrough},
		{Pattern: ast.T("GROUP", x), Params: []string{"x"}, Handler: passThrough},
		{Pattern: ast.T("OP", l, ast.Str("+"), r), Params: []string{"l", "r"}, Handler: binary("Sum")},
		{Pattern: ast.T("OP", l, ast.Str("*"), r), Params: []string{"l", "r"}, Handler: binary("Mult")},
		{Pattern: ast.T("OP", l, ast.Str("-"), r), Params: []string{"l", "r"}, Handler: binary("Sub")},
		{Pattern: ast.T("Num", x), Params: []string{"x"}, Handler: func(args ...ast.Node) (ast.Node, error) {
			return ast.T("Num", args[0]), nil
		}},
	}
}

func evalRules() []dispatch.Rule[ast.Node] {
	a, b := pattern.V("a"), pattern.V("b")

	binary := func(op func(x, y int64) (int64, error)) func(args ...ast.Node) (ast.Node, error) {
		return func(args ...ast.Node) (ast.Node, error) {
			x, err := evalValue(args[0])
			if err != nil {
				return nil, err
			}
			y, err := evalValue(args[1])
			if err != nil {
				return nil, err
			}
			n, err := op(x, y)
			if err != nil {
				return nil, err
			}
			return Num(n), nil
		}
	}
	compare := func(cmp func(x, y int64) bool) *pattern.Guard {
		return &pattern.Guard{
			Params: []string{"a", "b"},
			Fn: func(args ...ast.Node) bool {
				x, okx := ast.AsInt(args[0])
				y, oky := ast.AsInt(args[1])
				return okx && oky && cmp(x, y)
			},
		}
	}
	absSub := ast.T("AbsSub", ast.T("Num", a), ast.T("Num", b))
	diff := func(args ...ast.Node) (ast.Node, error) {
		x, _ := ast.AsInt(args[0])
		y, _ := ast.AsInt(args[1])
		n, err := subInt(x, y)
		if err != nil {
			return nil, &OverflowError{Op: "AbsSub", X: x, Y: y}
		}
		return Num(n), nil
	}

	return []dispatch.Rule[ast.Node]{
		{Pattern: ast.T("Mult", a, b), Params: []string{"a", "b"}, Handler: binary(mulInt)},
		{Pattern: ast.T("Sum", a, b), Params: []string{"a", "b"}, Handler: binary(addInt)},
		{Pattern: ast.T("Sub", a, b), Params: []string{"a", "b"}, Handler: binary(subInt)},
		{Pattern: ast.T("Num", a), Params: []string{"a"}, Handler: func(args ...ast.Node) (ast.Node, error) {
			return ast.T("Num", args[0]), nil
		}},
		{
			Pattern: absSub,
			Guard:   compare(func(x, y int64) bool { return x > y }),
			Params:  []string{"a", "b"},
			Handler: diff,
		},
		{
			Pattern: absSub,
			Guard:   compare(func(x, y int64) bool { return y > x }),
			Params:  []string{"b", "a"},
			Handler: diff,
		},
		{
			Pattern: absSub,
			Guard:   compare(func(x, y int64) bool { return x == y }),
			Handler: func(...ast.Node) (ast.Node, error) { return Num(0), nil },
		},
	}
}

func evalValue(node ast.Node) (int64, error) {
	r, err := evalTable.Dispatch(node)
	if err != nil {
		return 0, err
	}
	return Value(r)
}

func simplifyRules() []dispatch.Rule[ast.Node] {
	x := pattern.V("x")
	one, zero := Num(1), Num(0)

	collapse := func(args ...ast.Node) (ast.Node, error) {
		if _, ok := args[0].(ast.Tuple); !ok {
			return args[0], nil
		}
		return simplifyTable.Dispatch(args[0])
	}

	return []dispatch.Rule[ast.Node]{
		{Pattern: ast.T("Mult", x, one), Params: []string{"x"}, Handler: collapse},
		{Pattern: ast.T("Mult", one, x), Params: []string{"x"}, Handler: collapse},
		{Pattern: ast.T("Sum", x, zero), Params: []string{"x"}, Handler: collapse},
		{Pattern: ast.T("Sum", zero, x), Params: []string{"x"}, Handler: collapse},
		{
			Pattern: ast.Tuple{pattern.Wildcard{Label: "tag"}, pattern.Rest{Label: "kids"}},
			Params:  []string{"tag", "kids"},
			Handler: func(args ...ast.Node) (ast.Node, error) {
				kids, err := dispatch.MapChildren(simplifyTable, args[1].(ast.Tuple))
				if err != nil {
					return nil, err
				}
				return append(ast.Tuple{args[0]}, kids...), nil
			},
		},
	}
}
