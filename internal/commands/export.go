package commands

import (
	"context"
	"errors"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved transactions",
	}
	cmd.AddCommand(newExportNotionCommand(root))
	return cmd
}

func newExportNotionCommand(root *rootOptions) *cobra.Command {
	var (
		f         filterFlags
		dryRun    bool
		prune     bool
		warehouse bool
	)

	cmd := &cobra.Command{
		Use:   "notion",
		Short: "Create Notion pages for ledger transactions not yet exported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			ctx, a, err := root.open(cmd, app.Options{Notion: true, Warehouse: warehouse}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Notion == nil {
				return errors.New("notion export needs notion.token and notion.database_id")
			}
			txs, err := exportSource(ctx, a, filter, warehouse)
			if err != nil {
				return err
			}

			exporter := *a.Notion
			exporter.DryRun = dryRun
			exporter.Prune = prune

			report, err := exporter.Export(ctx, txs)
			if err != nil {
				return err
			}
			printf(cmd, "created %d, skipped %d, failed %d, archived %d\n",
				report.Created, report.Skipped, report.Failed, report.Deleted)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing to Notion")
	cmd.Flags().BoolVar(&prune, "prune", false, "archive pages whose transaction is not in the export")
	cmd.Flags().BoolVar(&warehouse, "warehouse", false, "read from BigQuery instead of the local store (needs --from and --to)")
	return cmd
}

// exportSource reads the transactions to export from the local store or,
// for a date range, from the warehouse.
func exportSource(ctx context.Context, a *app.App, filter sqlite.Filter, warehouse bool) ([]domain.Transaction, error) {
	if warehouse {
		if a.Warehouse == nil {
			return nil, errNoWarehouse
		}
		if filter.From.IsZero() || filter.To.IsZero() {
			return nil, errors.New("--warehouse needs --from and --to")
		}
		return a.Warehouse.TransactionsBetween(ctx, filter.From, filter.To)
	}

	db, err := ledger(a)
	if err != nil {
		return nil, err
	}
	rows, err := db.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, len(rows))
	for i, r := range rows {
		txs[i] = r.Transaction
	}
	return txs, nil
}
