// Package main is the entry point for the hva-top CLI.
package main

import (
	"fmt"
	"io"
	"os"
)

// Set via ldflags during build.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "hva-top: %v\n", err)
		return 1
	}
	return 0
}
