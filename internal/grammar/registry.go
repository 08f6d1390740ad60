package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Registry builds grammars in two phases: rules refer to each other by name
// through Ref while they are being assembled, and Define binds each name to
// its definition. Resolve checks that every referenced name was defined.
type Registry struct {
	rules map[string]*Recursive
	order []string
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Recursive)}
}

// Ref returns the placeholder for name, creating it on first use.
func (g *Registry) Ref(name string) *Recursive {
	if r, ok := g.rules[name]; ok {
		return r
	}
	r := NewRecursive(name)
	g.rules[name] = r
	g.order = append(g.order, name)
	return r
}

// Define binds name to p. Results of the rule are wrapped as (tag, value)
// unless tag is empty. Redefining a name replaces the previous definition.
func (g *Registry) Define(name, tag string, p Parser) *Recursive {
	return g.Ref(name).Bind(tag, p)
}

// Lookup returns the rule called name if it has been defined.
func (g *Registry) Lookup(name string) (Parser, bool) {
	r, ok := g.rules[name]
	if !ok || !r.Bound() {
		return nil, false
	}
	return r, true
}

// Names lists rules in the order they were first referenced or defined.
func (g *Registry) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Resolve reports every rule that was referenced but never defined.
func (g *Registry) Resolve() error {
	var missing []string
	for name, r := range g.rules {
		if !r.Bound() {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &UnresolvedError{Names: missing}
}

type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("undefined grammar rules: %s", strings.Join(e.Names, ", "))
}
