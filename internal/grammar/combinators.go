package grammar

import (
	"log/slog"
	"pmlang/internal/ast"
	"pmlang/internal/token"
	"strconv"
	"strings"
)

// Parser consumes a prefix of in. On success it returns the parsed value and
// the unconsumed remainder. On failure it returns ok == false together with
// in unchanged, so callers can backtrack without bookkeeping.
//
// When whole is set the parser only succeeds if nothing remains.
type Parser interface {
	Parse(in token.Stream, whole bool) (value ast.Node, rest token.Stream, ok bool)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(in token.Stream, whole bool) (ast.Node, token.Stream, bool)

func (f ParserFunc) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	return f(in, whole)
}

func fail(in token.Stream) (ast.Node, token.Stream, bool) {
	return nil, in, false
}

// finish applies the whole-parse requirement to a successful partial result.
func finish(value ast.Node, rest, in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	if whole && !rest.Empty() {
		return fail(in)
	}
	return value, rest, true
}

type LiteralParser struct {
	sym rune
}

// Literal matches exactly one symbol and yields it as a string leaf.
func Literal(sym rune) *LiteralParser {
	return &LiteralParser{sym: sym}
}

func (l *LiteralParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	if ch, ok := in.Peek(); ok && ch == l.sym {
		return finish(ast.Str(string(l.sym)), in.Advance(1), in, whole)
	}
	return fail(in)
}

type KeywordParser struct {
	word []rune
}

// Keyword matches an exact sequence of symbols.
func Keyword(word string) *KeywordParser {
	return &KeywordParser{word: []rune(word)}
}

func (k *KeywordParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	if len(k.word) == 0 || !in.HasPrefix(k.word) {
		return fail(in)
	}
	return finish(ast.Str(string(k.word)), in.Advance(len(k.word)), in, whole)
}

type RunParser struct {
	tag      string
	alphabet string
	convert  func(string) (ast.Node, bool)
}

// Run greedily consumes the longest prefix made of alphabet symbols. The
// result is (tag, "run"), or the bare string leaf when tag is empty.
func Run(tag, alphabet string) *RunParser {
	return &RunParser{tag: tag, alphabet: alphabet}
}

// Int matches a run of decimal digits and yields ("Num", n).
func Int() *RunParser {
	return &RunParser{
		tag:      "Num",
		alphabet: "0123456789",
		convert: func(s string) (ast.Node, bool) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, false
			}
			return ast.Int(n), true
		},
	}
}

func (r *RunParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	i := 0
	for i < in.Len() && strings.ContainsRune(r.alphabet, in.At(i)) {
		i++
	}
	if i == 0 {
		return fail(in)
	}

	var leaf ast.Node = ast.Str(in.Take(i))
	if r.convert != nil {
		var ok bool
		if leaf, ok = r.convert(in.Take(i)); !ok {
			return fail(in)
		}
	}

	if r.tag == "" {
		return finish(leaf, in.Advance(i), in, whole)
	}
	return finish(ast.T(r.tag, leaf), in.Advance(i), in, whole)
}

type JoinParser struct {
	tag   string
	parts []Parser
}

// Join applies parts in order, threading the remainder through them. Any
// failure fails the whole sequence with the original input. The result is
// (tag, v1, ..., vn), or the untagged tuple (v1, ..., vn) when tag is empty.
func Join(tag string, parts ...Parser) *JoinParser {
	return &JoinParser{tag: tag, parts: parts}
}

func (j *JoinParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	values := make(ast.Tuple, 0, len(j.parts)+1)
	if j.tag != "" {
		values = append(values, ast.Str(j.tag))
	}

	rest := in
	for _, p := range j.parts {
		v, r, ok := p.Parse(rest, false)
		if !ok {
			return fail(in)
		}
		values = append(values, v)
		rest = r
	}
	return finish(values, rest, in, whole)
}

type AnyParser struct {
	alts []Parser
}

// Any tries each alternative in order and returns the first success. There
// is no longest-match policy. In whole mode each alternative must itself
// consume the entire input, so a short match does not shadow a later
// alternative that would consume everything.
func Any(alts ...Parser) *AnyParser {
	return &AnyParser{alts: alts}
}

func (a *AnyParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	for _, p := range a.alts {
		if v, rest, ok := p.Parse(in, whole); ok {
			return v, rest, true
		}
	}
	return fail(in)
}

type NestedParser struct {
	tag   string
	open  rune
	close rune
	inner Parser
}

// Nested matches a balanced open/close pair by depth counting. The interior
// must be consumed completely by inner; with a nil inner the raw interior is
// returned as a string leaf. Delimiters inside quoted text are counted like
// any other symbol.
func Nested(tag string, openSym, closeSym rune, inner Parser) *NestedParser {
	return &NestedParser{tag: tag, open: openSym, close: closeSym, inner: inner}
}

func (n *NestedParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	if ch, ok := in.Peek(); !ok || ch != n.open {
		return fail(in)
	}

	depth := 1
	end := -1
	for i := 1; i < in.Len(); i++ {
		ch := in.At(i)
		// close is checked first so identical delimiters pair up
		if ch == n.close {
			depth--
		} else if ch == n.open {
			depth++
		}
		if depth == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return fail(in)
	}

	interior := in.Window(1, end)
	var value ast.Node
	if n.inner == nil {
		value = ast.Str(interior.String())
	} else {
		v, r, ok := n.inner.Parse(interior, true)
		if !ok || !r.Empty() {
			return fail(in)
		}
		value = v
	}

	if n.tag != "" {
		value = ast.T(n.tag, value)
	}
	return finish(value, in.Advance(end+1), in, whole)
}

type RepeatParser struct {
	p Parser
}

// Repeat applies p zero or more times. It never fails; with no matches it
// returns an empty tuple and the input untouched.
func Repeat(p Parser) *RepeatParser {
	return &RepeatParser{p: p}
}

func (r *RepeatParser) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	values := ast.Tuple{}
	rest := in
	for {
		v, next, ok := r.p.Parse(rest, false)
		// a success that consumes nothing would repeat forever
		if !ok || next.Offset() == rest.Offset() {
			break
		}
		values = append(values, v)
		rest = next
	}
	return finish(values, rest, in, whole)
}

// Recursive is a placeholder that lets a grammar refer to itself. It is
// created first, used while the rest of the graph is assembled, and bound
// to its definition afterwards.
type Recursive struct {
	name string
	tag  string
	p    Parser
}

func NewRecursive(name string) *Recursive {
	return &Recursive{name: name}
}

// Bind sets the definition. Results are wrapped as (tag, value) unless tag
// is empty.
func (r *Recursive) Bind(tag string, p Parser) *Recursive {
	r.tag = tag
	r.p = p
	return r
}

func (r *Recursive) Bound() bool  { return r.p != nil }
func (r *Recursive) Name() string { return r.name }

func (r *Recursive) Parse(in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	if r.p == nil {
		slog.Warn("parse through unbound recursive grammar", slog.String("name", r.name))
		return fail(in)
	}
	v, rest, ok := r.p.Parse(in, whole)
	if !ok {
		return fail(in)
	}
	if r.tag == "" {
		return v, rest, true
	}
	return ast.T(r.tag, v), rest, true
}
