package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlstate/pkg/codec"
)

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [query]",
		Short: "Decode a query string to JSON",
		Long: `Decode a query string to a JSON object, applying the engine's
global coercion. A leading "?" is allowed.

Examples:
  urlstate decode 'page=2&tags=vue&tags=vite'
  urlstate decode '?user.name=bob&user.age=30'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args)
			if err != nil {
				return err
			}

			state := codec.Decode(strings.TrimSpace(string(raw)))
			out, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
