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
		Use:   "urlstate",
		Short: "Query-string codec tooling for urlstate",
		Long: `urlstate converts between JSON state values and the flat
query-string representation used by the sync engine.

Nesting maps to dot-separated keys, sequences to repeated keys, and
decoding applies the engine's global coercion (numerals to numbers,
true/false to booleans).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		encodeCmd(),
		decodeCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
