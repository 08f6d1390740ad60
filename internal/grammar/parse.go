package grammar

import (
	"errors"
	"fmt"
	"log/slog"
	"pmlang/internal/ast"
	"pmlang/internal/lexer"
	"pmlang/internal/token"
	"pmlang/internal/util"
)

var ErrSyntax = errors.New("syntax error")

// SyntaxError is returned by ParseString when the grammar cannot consume the
// whole input. Offset counts symbols after whitespace stripping; Line and
// Column refer to the original source.
type SyntaxError struct {
	Source string
	Offset int
	Line   int
	Column int
	Found  string
}

func (e *SyntaxError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("syntax error at %d:%d: unexpected end of input", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d: unexpected %q", e.Line, e.Column, e.Found)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Context renders the offending source line with a caret under the error.
func (e *SyntaxError) Context() string {
	note := "unexpected here"
	if e.Found == "" {
		note = "unexpected end of input"
	}
	return util.GetContextLines(e.Source, e.Line, e.Column, note)
}

// Parse runs p over in and logs the outcome at debug level. It is the entry
// point for callers that manage their own streams and want the raw
// (value, remainder, ok) triple.
func Parse(p Parser, in token.Stream, whole bool) (ast.Node, token.Stream, bool) {
	v, rest, ok := p.Parse(in, whole)
	slog.Debug("parse",
		slog.Bool("whole", whole),
		slog.Bool("ok", ok),
		slog.Int("consumed", rest.Offset()-in.Offset()),
		slog.Int("remaining", rest.Len()),
	)
	return v, rest, ok
}

// ParseString strips whitespace from src and parses it in whole mode. A
// failure is escalated to a *SyntaxError pointing at the first symbol a
// partial parse could not consume.
func ParseString(p Parser, src string) (ast.Node, error) {
	in := lexer.Whitespace(src)

	if v, _, ok := Parse(p, in, true); ok {
		return v, nil
	}

	offset := 0
	if _, rest, ok := Parse(p, in, false); ok {
		offset = rest.Offset()
	}

	pos := lexer.SourcePosition(src, offset)
	line, col := util.GetLineAndColumn(src, pos)
	found := ""
	if offset < in.Len() {
		found = string(in.At(offset))
	}

	slog.Debug("parse failed",
		slog.Int("offset", offset),
		slog.Int("line", line),
		slog.Int("column", col),
	)

	return nil, &SyntaxError{
		Source: src,
		Offset: offset,
		Line:   line,
		Column: col,
		Found:  found,
	}
}
