// Package commands is the expense CLI command tree.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/config"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/spf13/cobra"
)

var (
	errNoLedger    = errors.New("local store disabled: storage.sqlite_path is empty")
	errNoWarehouse = errors.New("warehouse disabled: needs storage.gcp_project and storage.bigquery_dataset")
)

type rootOptions struct {
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "expense",
		Short: "Extract and categorize expenses from SMS, statements and bills",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "configuration file")

	rootCmd.AddCommand(
		newParseCommand(opts),
		newCategorizeCommand(opts),
		newBillersCommand(opts),
		newLedgerCommand(opts),
		newRecategorizeCommand(opts),
		newExportCommand(opts),
		newMigrateCommand(opts),
		newUploadCommand(opts),
	)
	return rootCmd
}

// open loads configuration, lets adjust tweak it, and opens the app with
// the local store. The returned context carries the app logger.
func (o *rootOptions) open(cmd *cobra.Command, opts app.Options, adjust func(*config.Config)) (context.Context, *app.App, error) {
	cfg, err := app.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	opts.Ledger = true

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	return logger.WithContext(ctx, a.Log), a, nil
}

func ledger(a *app.App) (*sqlite.DB, error) {
	if a.Ledger == nil {
		return nil, errNoLedger
	}
	return a.Ledger, nil
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
