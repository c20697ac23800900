package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	source   string
	category string
	from, to string
	limit    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "sms, bank, credit_card or bill")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum rows")
}

func (f *filterFlags) filter() (sqlite.Filter, error) {
	var out sqlite.Filter
	if f.source != "" {
		s, err := domain.ParseSource(f.source)
		if err != nil {
			return out, err
		}
		out.Source = s
	}
	if f.category != "" {
		c, ok := domain.CanonicalCategory(f.category)
		if !ok {
			return out, fmt.Errorf("unknown category %q", f.category)
		}
		out.Category = c
	}
	var err error
	if out.From, err = parseDay(f.from); err != nil {
		return out, fmt.Errorf("--from: %w", err)
	}
	if out.To, err = parseDay(f.to); err != nil {
		return out, fmt.Errorf("--to: %w", err)
	}
	out.Limit = f.limit
	return out, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func newLedgerCommand(root *rootOptions) *cobra.Command {
	var f filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List transactions saved in the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			ctx, a, err := root.open(cmd, app.Options{}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := ledger(a)
			if err != nil {
				return err
			}
			rows, err := db.ListTransactions(ctx, filter)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			txs := make([]domain.Transaction, len(rows))
			for i, r := range rows {
				txs[i] = r.Transaction
			}
			printTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newRecategorizeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize",
		Short: "Re-apply the current biller mappings to every saved transaction",
		Args:  cobra.NoArgs,
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
			n, err := db.Recategorize(ctx, a.Registry.Table())
			if err != nil {
				return err
			}
			printf(cmd, "%d transactions recategorized\n", n)
			return nil
		},
	}
}
