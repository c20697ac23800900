package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	dateFormat        = "2006-01-02"
)

// InsertTransactionsWithClient streams a batch of rows into
// <dataset>.transactions.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsByDateRangeWithClient returns ledger rows dated within
// [startDate, endDate] from finished parsing runs, oldest first.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, dataset string, startDate, endDate time.Time) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.parsing_run_id,
			t.source,
			t.transaction_date,
			t.amount,
			t.currency,
			t.description,
			t.biller,
			t.category_name,
			t.is_incoming,
			t.produced_by_ai,
			t.raw_text,
			t.statement_line_no,
			t.created_ts
		FROM %[1]s.%[2]s t
		INNER JOIN %[1]s.%[3]s pr
		  ON t.parsing_run_id = pr.parsing_run_id
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND pr.status = @status
		ORDER BY t.transaction_date, t.created_ts
	`, dataset, transactionsTable, parsingRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
		{Name: "status", Value: RunStatusSuccess},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
