package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListenCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Control voice listening on the backend",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start voice listening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.shutdownManager(nil).Shutdown()

			if err := a.api.StartListening(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Listening started.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop voice listening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.shutdownManager(nil).Shutdown()

			if err := a.api.StopListening(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Listening stopped.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check that the backend API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.shutdownManager(nil).Shutdown()

			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", a.api.BaseURL(), h.Status, h.Service)
			return nil
		},
	})

	return cmd
}
