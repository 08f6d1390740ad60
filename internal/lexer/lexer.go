package lexer

import (
	"pmlang/internal/token"
	"unicode"
)

// Whitespace removes every whitespace rune from input and returns the
// remaining symbols as a stream. Offsets in the result count stripped
// symbols, not bytes of the original source.
func Whitespace(input string) token.Stream {
	syms := make([]rune, 0, len(input))
	for _, ch := range input {
		if unicode.IsSpace(ch) {
			continue
		}
		syms = append(syms, ch)
	}
	return token.New(syms)
}

// SourcePosition maps an offset into the stream produced by Whitespace back
// to a byte position in input. Offsets past the end map to len(input).
func SourcePosition(input string, offset int) int {
	seen := 0
	for i, ch := range input {
		if unicode.IsSpace(ch) {
			continue
		}
		if seen == offset {
			return i
		}
		seen++
	}
	return len(input)
}
