package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nixlim/hva-top/internal/diagnose"
)

func newDiagnoseCmd() *cobra.Command {
	var (
		details    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose <message>",
		Short: "Explain an error message and suggest remediation steps",
		Long: `Classify an error message (and optional JSON details) against the known
fault signatures: backend connectivity, network, server errors and microphone
access. Messages matching none of them get generic advice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := diagnose.Input{Message: args[0]}
			if details != "" {
				if !json.Valid([]byte(details)) {
					return errors.New("--details must be valid JSON")
				}
				in.Details = json.RawMessage(details)
			}

			d := diagnose.Diagnose(in)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDiagnosis(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&details, "details", "", "Structured details as JSON")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the diagnosis as JSON")
	return cmd
}

func printDiagnosis(w io.Writer, d diagnose.Diagnosis) {
	fmt.Fprintf(w, "%s (%s)\n\n", d.Title, d.Rule)
	fmt.Fprintf(w, "%s\n\n", d.Explanation)
	fmt.Fprintf(w, "Cause:  %s\n", d.Cause)
	fmt.Fprintf(w, "Impact: %s\n\n", d.Impact)
	fmt.Fprintln(w, "Steps:")
	for i, s := range d.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}
