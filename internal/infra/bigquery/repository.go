// Package bigquery is the warehouse sink: parsing runs, the transaction
// ledger and biller overrides live in one dataset.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/parser"
)

// Repository binds a client to a dataset.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	if projectID == "" || dataset == "" {
		return nil, fmt.Errorf("NewRepository: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}

// SaveResult audits one parse call and appends its transactions. The run is
// marked FAILED if the insert does not go through.
func (r *Repository) SaveResult(ctx context.Context, jobID string, source domain.Source, res parser.Result) (string, error) {
	runID, err := StartParsingRunWithClient(ctx, r.client, r.dataset, jobID, source)
	if err != nil {
		return "", err
	}

	if err := InsertTransactionsWithClient(ctx, r.client, r.dataset, TransactionRows(res, runID)); err != nil {
		MarkParsingRunFailedWithClient(ctx, r.client, r.dataset, runID, err)
		return runID, err
	}
	if err := FinishParsingRunWithClient(ctx, r.client, r.dataset, runID, res); err != nil {
		return runID, err
	}
	return runID, nil
}

func (r *Repository) TransactionsBetween(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	rows, err := QueryTransactionsByDateRangeWithClient(ctx, r.client, r.dataset, start, end)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.Transaction()
		if err != nil {
			return nil, fmt.Errorf("TransactionsBetween: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *Repository) BillerMappings(ctx context.Context) ([]mapping.Entry, error) {
	return ListBillerMappingsWithClient(ctx, r.client, r.dataset)
}

func (r *Repository) SetBillerMapping(ctx context.Context, e mapping.Entry) error {
	return UpsertBillerMappingWithClient(ctx, r.client, r.dataset, e)
}

// TransactionRows converts every transaction of res for insertion under runID.
func TransactionRows(res parser.Result, runID string) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		rows = append(rows, NewTransactionRow(tx, runID, res.ProducedByAI))
	}
	return rows
}

// Migrate brings the dataset schema up to date.
func (r *Repository) Migrate(ctx context.Context, appliedBy string) (int, error) {
	return MigrateWithClient(ctx, r.client, r.dataset, appliedBy)
}
