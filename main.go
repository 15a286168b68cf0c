package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-parser/internal/config"
	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

// cliApp carries state shared by the subcommands once config is loaded.
type cliApp struct {
	cfg      config.Config
	registry *parser.Registry
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	root := &cobra.Command{
		Use:   "statement-parser",
		Short: "Extract key details from Indian credit card and bank statements",
		Long: `Extracts the card or account number, billing cycle, payment due date,
total balance, minimum payment and recent transactions from statements
issued by American Express, HDFC Bank, ICICI Bank, Kotak Mahindra Bank
and State Bank of India.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.registry = parser.Default().WithLogger(logger.Init(cfg.Log.Level, cfg.Log.Format))
			return nil
		},
	}

	root.AddCommand(
		newParseCmd(app),
		newServeCmd(app),
		newIssuersCmd(app),
	)
	return root
}
