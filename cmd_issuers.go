package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-parser/internal/parser"
)

func newIssuersCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "issuers",
		Short: "List supported issuers in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, issuer := range app.registry.Issuers() {
				fmt.Fprintf(out, "%-6s %s\n", parser.Alias(issuer), issuer)
			}
			return nil
		},
	}
}
