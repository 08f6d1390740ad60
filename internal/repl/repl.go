package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"pmlang/internal/arith"
	"pmlang/internal/ast"
	"pmlang/internal/grammar"
	"pmlang/internal/store"
	"pmlang/internal/util"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

const PROMPT = ">> "

const helpText = `Commands:
  <expr>             evaluate an arithmetic expression
  :ast <expr>        show the parse tree
  :lower <expr>      show the value tree
  :simplify <expr>   show the value tree without *1 and +0
  :help              show this text
  :quit              leave the REPL`

var ErrUnknownCommand = errors.New("unknown command")

// Journal receives every line the session evaluates.
type Journal interface {
	Record(ctx context.Context, e store.Entry) (store.Entry, error)
}

type Session struct {
	Output  string
	Journal Journal
}

func NewSession(output string, journal Journal) *Session {
	return &Session{Output: output, Journal: journal}
}

// Eval runs one line of input. quit is set when the line asks to leave.
func (s *Session) Eval(line string) (out string, quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}

	cmd, arg := line, ""
	if strings.HasPrefix(line, ":") {
		if i := strings.IndexAny(line, " \t"); i > 0 {
			cmd, arg = line[:i], strings.TrimSpace(line[i+1:])
		}
	} else {
		cmd, arg = "", line
	}

	switch cmd {
	case ":quit", ":q":
		return "", true, nil
	case ":help":
		return helpText, false, nil
	case ":ast":
		out, err = s.tree(arg, false, false)
	case ":lower":
		out, err = s.tree(arg, true, false)
	case ":simplify":
		out, err = s.tree(arg, true, true)
	case "":
		var n int64
		if n, err = arith.Run(arg); err == nil {
			out = strconv.FormatInt(n, 10)
		}
	default:
		return "", false, errors.Wrap(ErrUnknownCommand, cmd)
	}

	s.record(line, out, err)
	return out, false, err
}

func (s *Session) tree(src string, lower, simplify bool) (string, error) {
	tree, err := arith.Parse(src)
	if err != nil {
		return "", err
	}
	if lower {
		if tree, err = arith.Lower(tree); err != nil {
			return "", err
		}
	}
	if simplify {
		if tree, err = arith.Simplify(tree); err != nil {
			return "", err
		}
	}
	return Render(tree, s.Output)
}

func (s *Session) record(line, out string, err error) {
	if s.Journal == nil {
		return
	}
	e := store.Entry{Command: "repl", Input: line, Output: out}
	if err != nil {
		e.Error = err.Error()
	}
	if _, jerr := s.Journal.Record(context.Background(), e); jerr != nil {
		slog.Warn("failed to journal repl line", slog.Any("error", jerr))
	}
}

// Start reads lines from in until it is exhausted or :quit is entered. It is
// used when input does not come from a terminal.
func (s *Session) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		if s.step(out, scanner.Text()) {
			return
		}
	}
}

// Run drives an interactive session with line editing. History is loaded
// from historyFile on start and written back on exit.
func (s *Session) Run(historyFile string, out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer saveHistory(ln, historyFile)
	}

	fmt.Fprintln(out, "pmlang REPL. Ctrl+D exits, :help lists commands.")
	for {
		line, err := ln.Prompt(PROMPT)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.step(out, line) {
			return nil
		}
	}
}

func (s *Session) step(out io.Writer, line string) bool {
	result, quit, err := s.Eval(line)
	if err != nil {
		io.WriteString(out, Describe(err)+"\n")
		return quit
	}
	if result != "" {
		io.WriteString(out, result+"\n")
	}
	return quit
}

func saveHistory(ln *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("cannot create history directory", slog.String("path", path), slog.Any("error", err))
		return
	}
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("cannot write history", slog.String("path", path), slog.Any("error", err))
		return
	}
	defer f.Close()
	_, _ = ln.WriteHistory(f)
}

// Render formats a tree in one of the configured output formats.
func Render(node ast.Node, output string) (string, error) {
	switch output {
	case util.OutputJSON:
		b, err := ast.MarshalIndentJSON(node)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case util.OutputTree:
		return ast.RenderText(node, 0), nil
	default:
		return ast.Format(node), nil
	}
}

// Describe renders an error for a human, with source context for syntax
// errors.
func Describe(err error) string {
	var syntaxErr *grammar.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Error() + "\n" + syntaxErr.Context()
	}
	return "error: " + err.Error()
}
