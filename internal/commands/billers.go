package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/spf13/cobra"
)

func newBillersCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billers",
		Short: "List and edit biller to category mappings",
	}
	cmd.AddCommand(
		newBillersListCommand(root),
		newBillersSetCommand(root),
		newBillersDeleteCommand(root),
	)
	return cmd
}

func newBillersListCommand(root *rootOptions) *cobra.Command {
	var category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known billers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, a, err := root.open(cmd, app.Options{}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			table := a.Registry.Table()
			entries := table.Entries()
			if category != "" {
				canonical, ok := domain.CanonicalCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				entries = table.EntriesFor(canonical)
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\n", e.Biller, e.Category)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only billers in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newBillersSetCommand(root *rootOptions) *cobra.Command {
	var warehouse bool

	cmd := &cobra.Command{
		Use:   "set <biller> <category>",
		Short: "Map a biller to a category in the local store or the warehouse",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := root.open(cmd, app.Options{Warehouse: warehouse}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if warehouse {
				return setWarehouseBiller(ctx, cmd, a, args[0], args[1])
			}
			db, err := ledger(a)
			if err != nil {
				return err
			}
			e, err := db.SetBillerOverride(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printf(cmd, "%s -> %s\n", e.Biller, e.Category)
			return nil
		},
	}
	cmd.Flags().BoolVar(&warehouse, "warehouse", false, "write the mapping to BigQuery instead of the local store")
	return cmd
}

func setWarehouseBiller(ctx context.Context, cmd *cobra.Command, a *app.App, biller, category string) error {
	if a.Warehouse == nil {
		return errNoWarehouse
	}
	canonical, ok := domain.CanonicalCategory(category)
	if !ok {
		return fmt.Errorf("category %q: %w", category, mapping.ErrUnknownCategory)
	}
	e := mapping.Entry{Biller: strings.ToUpper(strings.TrimSpace(biller)), Category: canonical}
	if e.Biller == "" {
		return mapping.ErrEmptyBiller
	}
	if err := a.Warehouse.SetBillerMapping(ctx, e); err != nil {
		return err
	}
	printf(cmd, "%s -> %s (warehouse)\n", e.Biller, e.Category)
	return nil
}

func newBillersDeleteCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <biller>",
		Short: "Remove a local override; built-in mappings stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := root.open(cmd, app.Options{}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := ledger(a)
			if err != nil {
				return err
			}
			if err := db.DeleteBillerOverride(ctx, args[0]); err != nil {
				return err
			}
			printf(cmd, "deleted %s\n", args[0])
			return nil
		},
	}
}
