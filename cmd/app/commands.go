package main

import (
	"fmt"
	"io"
	"os"
	"pmlang/internal/arith"
	"pmlang/internal/ast"
	"pmlang/internal/repl"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expr>",
		Short: "Print the parse tree of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			out, err := renderParse(src, a.config.Output)
			a.record(cmd.Context(), "parse", src, out, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func renderParse(src, output string) (string, error) {
	tree, err := arith.Parse(src)
	if err != nil {
		return "", err
	}
	return repl.Render(tree, output)
}

func newEvalCmd(a *app) *cobra.Command {
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "eval [expr]",
		Short: "Evaluate an expression or a JSON tree",
		Long: `Evaluates an arithmetic expression. With --json the tree is read from a
file ('-' for stdin) instead; it may be a parse tree (tagged EXPR) or a value
tree built from Sum, Mult, Sub, AbsSub and Num.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				input string
				n     int64
				err   error
			)
			switch {
			case jsonPath != "" && len(args) > 0:
				return errors.New("eval takes either an expression or --json, not both")
			case jsonPath != "":
				input, n, err = evalJSON(cmd.InOrStdin(), jsonPath)
			case len(args) > 0:
				input = strings.Join(args, " ")
				n, err = arith.Run(input)
			default:
				return errors.New("eval needs an expression or --json")
			}

			out := ""
			if err == nil {
				out = strconv.FormatInt(n, 10)
			}
			a.record(cmd.Context(), "eval", input, out, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Read the tree to evaluate from a JSON file ('-' for stdin)")
	return cmd
}

func evalJSON(stdin io.Reader, path string) (string, int64, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", 0, errors.Wrapf(err, "reading %s", path)
	}

	tree, err := ast.UnmarshalJSON(data)
	if err != nil {
		return "", 0, errors.Wrapf(err, "decoding %s", path)
	}
	input := ast.Format(tree)

	if ast.HasTag(tree, "EXPR") {
		if tree, err = arith.Lower(tree); err != nil {
			return input, 0, err
		}
	}
	result, err := arith.Eval(tree)
	if err != nil {
		return input, 0, err
	}
	n, err := arith.Value(result)
	return input, n, err
}

func newSimplifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify <expr>",
		Short: "Print the value tree with multiplications by one and additions of zero removed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			out, err := renderSimplified(src, a.config.Output)
			a.record(cmd.Context(), "simplify", src, out, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func renderSimplified(src, output string) (string, error) {
	tree, err := arith.Parse(src)
	if err != nil {
		return "", err
	}
	if tree, err = arith.Lower(tree); err != nil {
		return "", err
	}
	if tree, err = arith.Simplify(tree); err != nil {
		return "", err
	}
	return repl.Render(tree, output)
}
