package arith

import (
	"pmlang/internal/grammar"
)

// Grammar returns the arithmetic expression grammar:
//
//	EXPR    := OP | GROUP | Num
//	OP      := operand ('*' | '+' | '-') EXPR
//	operand := Num | GROUP
//	GROUP   := '(' EXPR ')'
//
// Operators are right-associative and share one precedence level, so
// 5-3-1 parses as 5-(3-1).
func Grammar() grammar.Parser {
	g := grammar.NewRegistry()

	operand := grammar.Any(grammar.Int(), g.Ref("group"))
	operator := grammar.Any(grammar.Literal('*'), grammar.Literal('+'), grammar.Literal('-'))

	g.Define("op", "", grammar.Join("OP", operand, operator, g.Ref("expr")))
	g.Define("group", "", grammar.Nested("GROUP", '(', ')', g.Ref("expr")))
	expr := g.Define("expr", "EXPR", grammar.Any(g.Ref("op"), g.Ref("group"), grammar.Int()))

	if err := g.Resolve(); err != nil {
		// every rule above is defined; a failure here is a programming error
		panic(err)
	}
	return expr
}
