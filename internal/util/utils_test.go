package util

import (
	"strings"
	"testing"
)

func TestGetLineAndColumn(t *testing.T) {
	src := "1 +\n2 *\n  3"

	tests := []struct {
		pos          int
		expectedLine int
		expectedCol  int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{10, 3, 3},
		{len(src), 3, 4},
	}

	for _, tt := range tests {
		line, col := GetLineAndColumn(src, tt.pos)
		if line != tt.expectedLine || col != tt.expectedCol {
			t.Errorf("GetLineAndColumn(%d) = %d:%d, expected %d:%d", tt.pos, line, col, tt.expectedLine, tt.expectedCol)
		}
	}
}

func TestGetContextLines(t *testing.T) {
	src := "1 +\n2 *\n3 ?"
	out := GetContextLines(src, 3, 3, "unexpected here")

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "1 | 1 +") {
		t.Errorf("missing first context line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "  >    3 | 3 ?") {
		t.Errorf("missing error line: %q", lines[2])
	}
	caret := strings.Index(lines[3], "^")
	if caret != strings.Index(lines[2], "?") {
		t.Errorf("caret at %d, expected under '?' at %d", caret, strings.Index(lines[2], "?"))
	}
	if !strings.HasSuffix(lines[3], "^ unexpected here") {
		t.Errorf("missing note: %q", lines[3])
	}
}

func TestGetContextLinesAtEndOfInput(t *testing.T) {
	out := GetContextLines("5+", 1, 3, "unexpected end of input")
	if !strings.HasSuffix(out, "^ unexpected end of input") {
		t.Errorf("unexpected output %q", out)
	}
	if GetContextLines("", 1, 1, "x") == "" {
		t.Errorf("empty source should still render its single empty line")
	}
}
