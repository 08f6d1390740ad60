package main

import (
	"os"
	"path/filepath"
	"pmlang/internal/util"
	"strings"
	"testing"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	root := a.rootCmd()
	var out strings.Builder
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	if cerr := a.teardown(); cerr != nil {
		t.Errorf("teardown: %v", cerr)
	}
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Setenv(util.HomeEnv, t.TempDir())

	tests := []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{"eval", "", []string{"eval", "2 * (3 + 4)"}, "14\n"},
		{"eval joins arguments", "", []string{"eval", "5", "-", "3", "-", "1"}, "3\n"},
		{"eval value tree json", `["Sum", ["Num", 3], ["Num", 4]]`, []string{"eval", "--json", "-"}, "7\n"},
		{"eval parse tree json", `["EXPR", ["Num", 5]]`, []string{"eval", "--json", "-"}, "5\n"},
		{"eval abs sub json", `["AbsSub", ["Num", 22], ["Num", 112]]`, []string{"eval", "--json", "-"}, "90\n"},
		{"parse", "", []string{"parse", "5+3"}, `("EXPR", ("OP", ("Num", 5), "+", ("EXPR", ("Num", 3))))` + "\n"},
		{"simplify", "", []string{"simplify", "(7 * 1) + 0"}, `("Num", 7)` + "\n"},
		{"simplify as tree", "", []string{"simplify", "-o", "tree", "2 * 3 * 1"}, "Mult\n  Num 2\n  Num 3\n"},
		{"repl from stdin", "1+1\n:quit\n", []string{"repl"}, ">> 2\n>> "},
	}

	for _, tt := range tests {
		got, err := runCmd(t, tt.stdin, tt.args...)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: got %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	t.Setenv(util.HomeEnv, t.TempDir())

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"syntax error", "", []string{"eval", "1 +"}},
		{"no expression", "", []string{"eval"}},
		{"expression and json", "", []string{"eval", "--json", "-", "1"}},
		{"bad json", `{"Num": 1}`, []string{"eval", "--json", "-"}},
		{"unknown node", `["Div", ["Num", 1], ["Num", 2]]`, []string{"eval", "--json", "-"}},
		{"bad output", "", []string{"parse", "-o", "xml", "1"}},
		{"missing config", "", []string{"--config", "/nonexistent/pmlang.toml", "eval", "1"}},
		{"unknown entry", "", []string{"history", "no-such-id"}},
	}

	for _, tt := range tests {
		if _, err := runCmd(t, tt.stdin, tt.args...); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestHistory(t *testing.T) {
	t.Setenv(util.HomeEnv, t.TempDir())

	if _, err := runCmd(t, "", "eval", "1+2"); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if _, err := runCmd(t, "", "eval", "1+"); err == nil {
		t.Fatalf("expected eval to fail")
	}
	if _, err := runCmd(t, "", "--no-journal", "eval", "9"); err != nil {
		t.Fatalf("eval: %v", err)
	}

	got, err := runCmd(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("history listed %d entries, expected 2:\n%s", len(lines), got)
	}
	if !strings.Contains(got, "1+2 => 3") || !strings.Contains(got, "1+ => error: ") {
		t.Errorf("unexpected history:\n%s", got)
	}

	id := strings.Fields(lines[0])[0]
	one, err := runCmd(t, "", "history", id)
	if err != nil {
		t.Fatalf("history %s: %v", id, err)
	}
	if !strings.Contains(one, "id:      "+id) {
		t.Errorf("unexpected entry:\n%s", one)
	}
}

func TestConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(util.HomeEnv, home)

	path := filepath.Join(home, "pmlang.yaml")
	content := "output: json\njournal_driver: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := runCmd(t, "", "--config", path, "parse", "7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expected := "[\n  \"EXPR\",\n  [\n    \"Num\",\n    7\n  ]\n]\n"
	if got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}

	// the journal is switched off by the config file
	if _, err := runCmd(t, "", "--config", path, "history"); err == nil {
		t.Errorf("expected history to fail without a journal")
	}
}

func TestVersion(t *testing.T) {
	got, err := runCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if got != "pmlang version 'vdev' unknown unknown\n" {
		t.Errorf("version = %q", got)
	}
}

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"none", "ERROR"},
		{"", "ERROR"},
	}
	for _, tt := range tests {
		if got := logLevelFromString(tt.level).String(); got != tt.expected {
			t.Errorf("logLevelFromString(%q) = %s, expected %s", tt.level, got, tt.expected)
		}
	}
}
