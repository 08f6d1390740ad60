package repl

import (
	"context"
	"pmlang/internal/grammar"
	"pmlang/internal/store"
	"pmlang/internal/util"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type memoryJournal struct {
	entries []store.Entry
}

func (j *memoryJournal) Record(_ context.Context, e store.Entry) (store.Entry, error) {
	j.entries = append(j.entries, e)
	return e, nil
}

func TestSessionEval(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		line     string
		expected string
	}{
		{"number", util.OutputText, "42", "42"},
		{"expression", util.OutputText, "2 * (3 + 4)", "14"},
		{"blank", util.OutputText, "   ", ""},
		{"parse tree", util.OutputText, ":ast 5+3", `("EXPR", ("OP", ("Num", 5), "+", ("EXPR", ("Num", 3))))`},
		{"value tree", util.OutputTree, ":lower 2*3", "Mult\n  Num 2\n  Num 3"},
		{"simplified", util.OutputText, ":simplify (7*1) + (2*0)", `("Sum", ("Num", 7), ("Mult", ("Num", 2), ("Num", 0)))`},
		{"json", util.OutputJSON, ":lower 1+2", "[\n  \"Sum\",\n  [\n    \"Num\",\n    1\n  ],\n  [\n    \"Num\",\n    2\n  ]\n]"},
	}

	for _, tt := range tests {
		s := NewSession(tt.output, nil)
		got, quit, err := s.Eval(tt.line)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if quit {
			t.Errorf("%s: unexpected quit", tt.name)
		}
		if got != tt.expected {
			t.Errorf("%s: got %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	s := NewSession(util.OutputText, nil)

	if _, _, err := s.Eval("1 +"); !errors.Is(err, grammar.ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
	if _, _, err := s.Eval(":frobnicate 1"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected unknown command, got %v", err)
	}
	if _, quit, err := s.Eval(":quit"); !quit || err != nil {
		t.Errorf(":quit = %v, %v", quit, err)
	}
}

func TestSessionJournal(t *testing.T) {
	j := &memoryJournal{}
	s := NewSession(util.OutputText, j)

	s.Eval("1+1")
	s.Eval("1+")
	s.Eval("")
	s.Eval(":help")

	if len(j.entries) != 2 {
		t.Fatalf("journaled %d lines, expected 2", len(j.entries))
	}
	if j.entries[0].Input != "1+1" || j.entries[0].Output != "2" || j.entries[0].Error != "" {
		t.Errorf("first entry = %+v", j.entries[0])
	}
	if j.entries[1].Input != "1+" || j.entries[1].Error == "" {
		t.Errorf("second entry = %+v", j.entries[1])
	}
}

func TestStart(t *testing.T) {
	in := strings.NewReader("1+2\n(4\n:quit\n5\n")
	var out strings.Builder

	NewSession(util.OutputText, nil).Start(in, &out)

	got := out.String()
	if !strings.Contains(got, PROMPT+"3\n") {
		t.Errorf("missing result in %q", got)
	}
	if !strings.Contains(got, "syntax error at 1:1") || !strings.Contains(got, "^ ") {
		t.Errorf("missing syntax error context in %q", got)
	}
	if strings.Contains(got, "5\n") {
		t.Errorf("input after :quit was evaluated: %q", got)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(errors.New("boom")); got != "error: boom" {
		t.Errorf("Describe = %q", got)
	}
}
