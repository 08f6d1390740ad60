package pattern

import (
	"fmt"
	"pmlang/internal/ast"
)

// Var is a named placeholder bound to whatever subtree sits at its position.
type Var struct {
	Label string
}

func (v Var) Kind() ast.Kind { return ast.KindPlaceholder }
func (v Var) String() string { return "<" + v.Label + ">" }

// Wildcard matches any tag. It is only legal at position 0 of a tuple and
// binds Label to the tag it matched.
type Wildcard struct {
	Label string
}

func (w Wildcard) Kind() ast.Kind { return ast.KindPlaceholder }
func (w Wildcard) String() string { return "<*" + w.Label + ">" }

// Rest captures every remaining element of a tuple as one untagged tuple.
// It is only legal as the last element and never at position 0.
type Rest struct {
	Label string
}

func (r Rest) Kind() ast.Kind { return ast.KindPlaceholder }
func (r Rest) String() string { return "<" + r.Label + "...>" }

// V returns the pattern variable called label.
func V(label string) Var {
	return Var{Label: label}
}

// Vars returns one variable per label, in order.
func Vars(labels ...string) []Var {
	out := make([]Var, len(labels))
	for i, l := range labels {
		out[i] = Var{Label: l}
	}
	return out
}

// Guard is evaluated after a structural match. Params names the bound
// variables handed to Fn, in order.
type Guard struct {
	Params []string
	Fn     func(args ...ast.Node) bool
}

// Env maps variable labels to the subtrees they matched. A fresh Env is
// built for every match attempt.
type Env map[string]ast.Node

// Args returns the values bound to params, in order.
func (e Env) Args(params []string) []ast.Node {
	args := make([]ast.Node, len(params))
	for i, p := range params {
		args[i] = e[p]
	}
	return args
}

// Pattern is a validated shape plus its optional guard.
type Pattern struct {
	shape  ast.Tuple
	guard  *Guard
	labels []string
}

// Compile validates shape and guard. The returned error is always a
// *RegistrationError.
func Compile(shape ast.Tuple, guard *Guard) (*Pattern, error) {
	labels, err := validateShape(shape)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		if guard.Fn == nil {
			return nil, registrationError("guard has no function")
		}
		if err := checkParams("guard", guard.Params, labels); err != nil {
			return nil, err
		}
	}
	return &Pattern{shape: shape, guard: guard, labels: labels}, nil
}

// MustCompile is Compile for patterns known to be valid at init time.
func MustCompile(shape ast.Tuple, guard *Guard) *Pattern {
	p, err := Compile(shape, guard)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Shape() ast.Tuple { return p.shape }
func (p *Pattern) Guard() *Guard    { return p.guard }

// Labels lists every label the pattern binds, in left-to-right order.
func (p *Pattern) Labels() []string {
	out := make([]string, len(p.labels))
	copy(out, p.labels)
	return out
}

// Binds reports whether label is bound by the pattern.
func (p *Pattern) Binds(label string) bool {
	for _, l := range p.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (p *Pattern) String() string {
	return p.shape.String()
}

// Match reports whether node has the pattern's shape and, if a guard is
// attached, whether the guard accepts the bindings.
func (p *Pattern) Match(node ast.Node) (Env, bool) {
	env, ok := p.MatchShape(node)
	if !ok {
		return nil, false
	}
	if p.guard != nil && !p.guard.Fn(env.Args(p.guard.Params)...) {
		return nil, false
	}
	return env, true
}

// MatchShape performs the structural match only.
func (p *Pattern) MatchShape(node ast.Node) (Env, bool) {
	env := make(Env, len(p.labels))
	if !match(p.shape, node, env) {
		return nil, false
	}
	return env, true
}

func match(pat, node ast.Node, env Env) bool {
	switch p := pat.(type) {
	case Var:
		bind(env, p.Label, node)
		return true
	case ast.Tuple:
		t, ok := node.(ast.Tuple)
		if !ok {
			return false
		}
		return matchTuple(p, t, env)
	case Wildcard, Rest:
		// only meaningful inside a tuple, handled by matchTuple
		return false
	default:
		return ast.Equal(pat, node)
	}
}

func matchTuple(p, t ast.Tuple, env Env) bool {
	for i, elem := range p {
		if r, ok := elem.(Rest); ok {
			if i > len(t) {
				return false
			}
			suffix := make(ast.Tuple, len(t)-i)
			copy(suffix, t[i:])
			bind(env, r.Label, suffix)
			return true
		}

		if i >= len(t) {
			return false
		}

		if w, ok := elem.(Wildcard); ok && i == 0 {
			bind(env, w.Label, t[0])
			continue
		}

		if !match(elem, t[i], env) {
			return false
		}
	}
	return len(p) == len(t)
}

func bind(env Env, label string, node ast.Node) {
	if _, dup := env[label]; dup {
		// Compile rejects duplicate labels, so this is a broken invariant.
		panic(fmt.Sprintf("pattern variable %q bound twice", label))
	}
	env[label] = node
}
