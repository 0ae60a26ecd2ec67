package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the last lines of the backend log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lines") && lines <= 0 {
				return errors.New("--lines must be positive")
			}

			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.shutdownManager(nil).Shutdown()

			n := a.cfg.Control.LogTailLines
			if cmd.Flags().Changed("lines") {
				n = lines
			}
			tail, err := a.api.TailLogs(cmd.Context(), n)
			if err != nil {
				return err
			}
			for _, l := range tail {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines (default [control] log_tail_lines)")
	return cmd
}
