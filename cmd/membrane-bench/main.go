package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "membrane-bench",
		Short: "Benchmark harness for the observable membrane",
		Long: `membrane-bench exercises the reactive membrane end to end:
it builds a tree of observable records and sequences, attaches consumers
that read through membrane proxies, then churns mutations and flushes,
reporting notification and render throughput.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
