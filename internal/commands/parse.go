package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/config"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/gcs"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/dvloznov/expense-extractor/internal/textract"
	"github.com/spf13/cobra"
)

type parseOptions struct {
	file    string
	gcsURI  string
	ai      bool
	asJSON  bool
	save    bool
	verbose bool
}

func newParseCommand(root *rootOptions) *cobra.Command {
	var o parseOptions

	cmd := &cobra.Command{
		Use:   "parse <source> [text...]",
		Short: "Extract transactions from SMS, bank, credit card or bill text",
		Long: "Extract transactions. Input is the remaining arguments, --file (text or PDF),\n" +
			"--gcs-uri, or standard input. Sources: sms, bank, credit_card, bill.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := domain.ParseSource(args[0])
			if err != nil {
				return err
			}
			ctx, a, err := root.open(cmd, app.Options{}, func(cfg *config.Config) {
				if o.ai {
					cfg.AI.Enabled = true
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()
			return runParse(ctx, cmd, a, source, args[1:], o)
		},
	}

	cmd.Flags().StringVar(&o.file, "file", "", "read a text or PDF file")
	cmd.Flags().StringVar(&o.gcsURI, "gcs-uri", "", "read a gs://bucket/object")
	cmd.Flags().BoolVar(&o.ai, "ai", false, "try the AI pass for statements (needs GEMINI_API_KEY)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&o.save, "save", false, "append found transactions to the local ledger")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "print parser status messages to stderr")
	cmd.MarkFlagsMutuallyExclusive("file", "gcs-uri")

	return cmd
}

func runParse(ctx context.Context, cmd *cobra.Command, a *app.App, source domain.Source, args []string, o parseOptions) error {
	src, cleanup, err := inputSource(ctx, cmd, args, o)
	if err != nil {
		return err
	}
	defer cleanup()

	status := &parser.Status{}
	res, err := a.Registry.ParseDocument(ctx, source, src, parser.WithStatus(status))
	if err != nil {
		return err
	}
	if o.verbose {
		for _, msg := range status.History() {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
	}

	if o.save && res.OK() {
		db, err := ledger(a)
		if err != nil {
			return err
		}
		n, err := db.SaveResult(ctx, "", res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %d transactions\n", n)
	}

	if o.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func inputSource(ctx context.Context, cmd *cobra.Command, args []string, o parseOptions) (parser.TextSource, func(), error) {
	noop := func() {}
	switch {
	case len(args) > 0:
		if o.file != "" || o.gcsURI != "" {
			return nil, noop, fmt.Errorf("give text arguments or --file/--gcs-uri, not both")
		}
		return parser.Text(strings.Join(args, " ")), noop, nil
	case o.file != "":
		return textract.ForPath(o.file), noop, nil
	case o.gcsURI != "":
		if _, _, err := gcs.ParseURI(o.gcsURI); err != nil {
			return nil, noop, err
		}
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, noop, err
		}
		return gcs.Object{Storage: client, URI: o.gcsURI}, func() { client.Close() }, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, noop, fmt.Errorf("reading stdin: %w", err)
		}
		return parser.Text(data), noop, nil
	}
}

func printResult(w io.Writer, res parser.Result) {
	switch res.Outcome {
	case parser.OutcomeExtractionFailed:
		fmt.Fprintf(w, "Extraction failed: %s\n", res.Reason)
		return
	case parser.OutcomeNoTransactionsFound:
		fmt.Fprintln(w, "No transactions found")
		return
	}

	producer := "heuristics"
	if res.ProducedByAI {
		producer = "AI"
	}
	fmt.Fprintf(w, "%d transactions (%s)\n", len(res.Transactions), producer)
	printTransactions(w, res.Transactions)
}

func printTransactions(w io.Writer, txs []domain.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Format("2006-01-02"), tx.Currency, tx.Amount.StringFixed(2), tx.Category, tx.Description)
	}
	tw.Flush()
}
