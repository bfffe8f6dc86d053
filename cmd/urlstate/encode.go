package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/codec"
)

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [json]",
		Short: "Encode a JSON object to a query string",
		Long: `Encode a JSON object to the engine's query-string form.

The object is read from the argument, or from stdin when no argument is
given.

Examples:
  urlstate encode '{"page": 2, "tags": ["vue", "vite"]}'
  echo '{"user": {"name": "bob"}}' | urlstate encode`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args)
			if err != nil {
				return err
			}

			var state urlstate.State
			if err := json.Unmarshal(raw, &state); err != nil {
				return fmt.Errorf("invalid JSON object: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), codec.Encode(state))
			return nil
		},
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(os.Stdin)
}
