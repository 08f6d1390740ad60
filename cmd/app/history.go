package main

import (
	"fmt"
	"io"
	"pmlang/internal/store"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List journaled commands, or show one entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("journal is disabled")
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				e, err := j.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printEntry(out, e)
				return nil
			}

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				status := e.Output
				if e.Error != "" {
					status = "error: " + e.Error
				}
				fmt.Fprintf(out, "%s  %s  %-8s %s => %s\n",
					e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Command, e.Input, status)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to list")
	return cmd
}

func printEntry(out io.Writer, e store.Entry) {
	fmt.Fprintf(out, "id:      %s\n", e.ID)
	fmt.Fprintf(out, "time:    %s\n", e.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "command: %s\n", e.Command)
	fmt.Fprintf(out, "input:   %s\n", e.Input)
	if e.Error != "" {
		fmt.Fprintf(out, "error:   %s\n", e.Error)
		return
	}
	fmt.Fprintf(out, "output:\n%s\n", e.Output)
}
