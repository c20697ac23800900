package commands

import (
	"strings"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/spf13/cobra"
)

func newCategorizeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <text...>",
		Short: "Show the biller and category text maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, a, err := root.open(cmd, app.Options{}, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args, " ")
			table := a.Registry.Table()
			biller, category := table.DetectBiller(text)
			if biller == mapping.UnknownBiller {
				category = table.Categorize(text)
			}
			printf(cmd, "biller:   %s\ncategory: %s\n", biller, category)
			return nil
		},
	}
}
