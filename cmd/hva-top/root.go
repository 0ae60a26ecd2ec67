package main

import (
	"github.com/spf13/cobra"
)

// globalFlags override values from the config file.
type globalFlags struct {
	configPath string
	url        string
	apiURL     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "hva-top",
		Short: "Live dashboard for the voice assistant backend",
		Long: `hva-top follows the assistant backend's real-time event channel and shows
model activity, listening state, spend, and local diagnostics.

Commands:
  hva-top                 Open the dashboard
  hva-top watch           Print activity as it arrives
  hva-top diagnose MSG    Explain an error message
  hva-top listen start    Start voice listening
  hva-top logs            Print the backend log tail
  hva-top setup           Write a default config file`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file path (default ~/.config/hva-top/config.toml)")
	pf.StringVar(&flags.url, "url", "", "Event channel URL (overrides [channel] url)")
	pf.StringVar(&flags.apiURL, "api", "", "Backend API base URL (overrides [control] base_url)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: error, warn, info, debug")

	rootCmd.SuggestionsMinimumDistance = 2

	rootCmd.AddCommand(newWatchCmd(flags))
	rootCmd.AddCommand(newDiagnoseCmd())
	rootCmd.AddCommand(newListenCmd(flags))
	rootCmd.AddCommand(newLogsCmd(flags))
	rootCmd.AddCommand(newSetupCmd(flags))

	return rootCmd
}
