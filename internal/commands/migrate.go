package commands

import (
	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/spf13/cobra"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	var appliedBy string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the BigQuery warehouse tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := root.open(cmd, app.Options{Warehouse: true}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Warehouse == nil {
				return errNoWarehouse
			}
			n, err := a.Warehouse.Migrate(ctx, appliedBy)
			if err != nil {
				return err
			}
			if n == 0 {
				printf(cmd, "warehouse schema is up to date\n")
				return nil
			}
			printf(cmd, "applied %d migrations\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&appliedBy, "applied-by", "expense-cli", "recorded in schema_migrations")
	return cmd
}
