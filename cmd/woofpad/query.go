package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
)

func newQueryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <query-json>",
		Short: "Run a query, e.g. '{\"get_pool\":{\"token_address\":\"woof1...\"}}'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q launchpad.QueryMsg
			if err := json.Unmarshal([]byte(args[0]), &q); err != nil {
				return fmt.Errorf("decode query: %w", err)
			}
			if _, err := q.Name(); err != nil {
				return err
			}
			c, err := flags.client()
			if err != nil {
				return err
			}
			var out json.RawMessage
			if err := c.Query(cmd.Context(), q, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
