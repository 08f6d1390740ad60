package ast

import (
	"strings"
	"testing"
)

func TestTupleString(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{T("Sum", T("Num", Int(3)), T("Num", Int(4))), `("Sum", ("Num", 3), ("Num", 4))`},
		{T("UnknownTag"), `("UnknownTag")`},
		{Tuple{}, `()`},
		{Tuple{Str("+"), Int(-2)}, `("+", -2)`},
		{Str(`a"b`), `"a\"b"`},
	}

	for _, tt := range tests {
		if got := Format(tt.node); got != tt.expected {
			t.Errorf("Format() = %s, expected %s", got, tt.expected)
		}
	}
}

func TestTag(t *testing.T) {
	if tag, ok := T("Num", Int(1)).Tag(); !ok || tag != "Num" {
		t.Errorf("Tag() = %q, %v", tag, ok)
	}
	if _, ok := (Tuple{Int(1), Int(2)}).Tag(); ok {
		t.Errorf("integer head should not count as a tag")
	}
	if _, ok := (Tuple{}).Tag(); ok {
		t.Errorf("empty tuple has no tag")
	}
	if len((Tuple{}).Children()) != 0 {
		t.Errorf("empty tuple has no children")
	}
	if !HasTag(T("Sum"), "Sum") || HasTag(Str("Sum"), "Sum") {
		t.Errorf("HasTag mismatch")
	}
}

func TestEqual(t *testing.T) {
	seven := T("Sum", T("Num", Int(3)), T("Num", Int(4)))

	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{"identical trees", seven, T("Sum", T("Num", Int(3)), T("Num", Int(4))), true},
		{"different leaf", seven, T("Sum", T("Num", Int(3)), T("Num", Int(5))), false},
		{"different arity", seven, T("Sum", T("Num", Int(3))), false},
		{"string vs int", Str("3"), Int(3), false},
		{"leaf vs tuple", Str("Num"), T("Num"), false},
		{"both nil", nil, nil, true},
		{"one nil", nil, Int(0), false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRenderText(t *testing.T) {
	tree := T("EXPR", T("OP", T("Num", Int(5)), Str("+"), T("EXPR", T("Num", Int(3)))))
	expected := strings.Join([]string{
		"EXPR",
		"  OP",
		"    Num 5",
		`    "+"`,
		"    EXPR",
		"      Num 3",
	}, "\n")

	if got := RenderText(tree, 0); got != expected {
		t.Errorf("RenderText() =\n%s\nexpected\n%s", got, expected)
	}

	if got := RenderText(Tuple{Int(1), Int(2)}, 0); got != "(\n  1\n  2\n)" {
		t.Errorf("untagged render = %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tree := T("Mult", T("Sum", T("Num", Int(3)), T("Num", Int(4))), Tuple{Str("x"), Int(-1)})

	data, err := MarshalJSON(tree)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `["Mult",["Sum",["Num",3],["Num",4]],["x",-1]]` {
		t.Errorf("unexpected json %s", data)
	}

	back, err := UnmarshalJSON(data)
	if err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !Equal(tree, back) {
		t.Errorf("round trip mismatch: %s", Format(back))
	}
}

func TestUnmarshalJSONErrors(t *testing.T) {
	tests := []string{
		`["Num", 1.5]`,
		`["Num", true]`,
		`{"tag": "Num"}`,
		`["Num", null]`,
		`["Num"] ["Num"]`,
		`[`,
	}

	for _, input := range tests {
		if _, err := UnmarshalJSON([]byte(input)); err == nil {
			t.Errorf("UnmarshalJSON(%s) expected error", input)
		}
	}
}

type marker struct{}

func (marker) Kind() Kind     { return KindPlaceholder }
func (marker) String() string { return "<m>" }

func TestMarshalRejectsPlaceholders(t *testing.T) {
	if _, err := MarshalJSON(Tuple{Str("Num"), marker{}}); err == nil {
		t.Errorf("expected error encoding placeholder")
	}
}
