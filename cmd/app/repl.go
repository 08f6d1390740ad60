package main

import (
	"os"
	"pmlang/internal/repl"

	"github.com/spf13/cobra"
)

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := repl.NewSession(a.config.Output, nil)

			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			if j != nil {
				session.Journal = j
			}

			if !isTerminal(os.Stdin) || cmd.InOrStdin() != os.Stdin {
				session.Start(cmd.InOrStdin(), cmd.OutOrStdout())
				return nil
			}
			return session.Run(a.config.HistoryFile, cmd.OutOrStdout())
		},
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
