package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixlim/hva-top/internal/config"
)

func newSetupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write a default config file",
		Long: `Write a commented config file with every default value to the --config
path, or ~/.config/hva-top/config.toml. An existing file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}

			res, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			switch res {
			case config.WriteAlreadyExists:
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s. No changes made.\n", path)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s.\n", path)
			}
			return nil
		},
	}
}
