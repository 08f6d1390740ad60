package dispatch

import (
	"errors"
	"log/slog"
	"pmlang/internal/ast"
	"pmlang/internal/pattern"
)

// Rule pairs a pattern (and optional guard) with the handler run when it
// matches. Params lists the pattern variables passed to Handler, in order.
type Rule[R any] struct {
	Pattern ast.Tuple
	Guard   *pattern.Guard
	Params  []string
	Handler func(args ...ast.Node) (R, error)
}

type compiledRule[R any] struct {
	pattern *pattern.Pattern
	params  []string
	handler func(args ...ast.Node) (R, error)
}

type Option[R any] func(*Table[R])

// WithFallback sets the function run on the raw tree when no rule matches.
func WithFallback[R any](fn func(ast.Node) (R, error)) Option[R] {
	return func(t *Table[R]) {
		t.fallback = fn
	}
}

// Table is an ordered, validated rule set. Rules are tried in order and the
// first one whose pattern and guard both accept the tree wins. A Table is
// never modified after New returns, so it can be shared freely.
type Table[R any] struct {
	name     string
	rules    []compiledRule[R]
	fallback func(ast.Node) (R, error)
}

// New validates rules and builds a table. Every problem is reported as a
// *pattern.RegistrationError naming the offending rule.
func New[R any](name string, rules []Rule[R], opts ...Option[R]) (*Table[R], error) {
	t := &Table[R]{
		name:  name,
		rules: make([]compiledRule[R], 0, len(rules)),
	}

	for i, r := range rules {
		p, err := pattern.Compile(r.Pattern, r.Guard)
		if err != nil {
			return nil, atRule(err, i)
		}
		if r.Handler == nil {
			return nil, &pattern.RegistrationError{Rule: i, Reason: "handler is nil"}
		}
		if err := pattern.CheckParams(p, "handler", r.Params); err != nil {
			return nil, atRule(err, i)
		}
		t.rules = append(t.rules, compiledRule[R]{
			pattern: p,
			params:  r.Params,
			handler: r.Handler,
		})
	}

	for _, opt := range opts {
		opt(t)
	}

	slog.Debug("dispatch table ready",
		slog.String("table", name),
		slog.Int("rules", len(t.rules)),
		slog.Bool("fallback", t.fallback != nil),
	)
	return t, nil
}

// MustNew is New for tables built at init time.
func MustNew[R any](name string, rules []Rule[R], opts ...Option[R]) *Table[R] {
	t, err := New(name, rules, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func atRule(err error, i int) error {
	var regErr *pattern.RegistrationError
	if errors.As(err, &regErr) {
		cp := *regErr
		cp.Rule = i
		return &cp
	}
	return err
}

func (t *Table[R]) Name() string { return t.name }
func (t *Table[R]) Len() int     { return len(t.rules) }

// Dispatch runs the first rule matching node and returns its result.
// Handler errors are returned unchanged.
func (t *Table[R]) Dispatch(node ast.Node) (R, error) {
	var zero R

	if _, ok := node.(ast.Tuple); !ok {
		return zero, &StructuralError{Table: t.name, Value: node}
	}

	for i, r := range t.rules {
		env, ok := r.pattern.Match(node)
		if !ok {
			continue
		}
		slog.Debug("dispatch",
			slog.String("table", t.name),
			slog.Int("rule", i),
			slog.String("pattern", r.pattern.String()),
		)
		return r.handler(env.Args(r.params)...)
	}

	if t.fallback != nil {
		slog.Debug("dispatch fallback", slog.String("table", t.name), slog.String("node", ast.Format(node)))
		return t.fallback(node)
	}

	return zero, &UnknownPatternError{Table: t.name, Node: node}
}

// MapChildren dispatches every tuple in kids through t and keeps leaves as
// they are. Rewriting passes use it to rebuild a node around rewritten
// children.
func MapChildren(t *Table[ast.Node], kids ast.Tuple) (ast.Tuple, error) {
	out := make(ast.Tuple, len(kids))
	for i, k := range kids {
		if _, ok := k.(ast.Tuple); !ok {
			out[i] = k
			continue
		}
		v, err := t.Dispatch(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
