package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// StoredTransaction is a ledger row.
type StoredTransaction struct {
	ID           int64  `json:"id"`
	JobID        string `json:"job_id,omitempty"`
	ProducedByAI bool   `json:"produced_by_ai"`
	domain.Transaction
}

// Filter narrows ListTransactions. Zero values match everything.
type Filter struct {
	Source   domain.Source
	Category string
	From, To time.Time
	Limit    int
}

// SaveResult appends the transactions of res in one database transaction
// and returns how many were written.
func (db *DB) SaveResult(ctx context.Context, jobID string, res parser.Result) (int, error) {
	if len(res.Transactions) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			job_id, source, txn_date, description, amount, currency,
			category, biller, incoming, produced_by_ai, raw_text, line_no
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range res.Transactions {
		_, err := stmt.ExecContext(ctx,
			jobID, string(t.Source), t.Date.Format(dateLayout), t.Description, t.Amount.String(),
			string(t.Currency), t.Category, t.Biller, t.Incoming, res.ProducedByAI, t.RawText, t.LineNo)
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(res.Transactions), nil
}

// ListTransactions returns ledger rows, oldest first.
func (db *DB) ListTransactions(ctx context.Context, f Filter) ([]StoredTransaction, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, string(f.Source))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		where = append(where, "txn_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "txn_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}

	query := `
		SELECT id, job_id, source, txn_date, description, amount, currency,
		       category, biller, incoming, produced_by_ai, raw_text, line_no
		FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY txn_date, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []StoredTransaction
	for rows.Next() {
		var (
			st               StoredTransaction
			source, currency string
			date, amount     string
		)
		if err := rows.Scan(&st.ID, &st.JobID, &source, &date, &st.Description, &amount, &currency,
			&st.Category, &st.Biller, &st.Incoming, &st.ProducedByAI, &st.RawText, &st.LineNo); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		st.Source = domain.Source(source)
		st.Currency = domain.Currency(currency)
		if st.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("transaction %d: date: %w", st.ID, err)
		}
		if st.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %d: amount: %w", st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Recategorize re-derives biller and category for every stored row from
// table and writes back the rows that changed.
func (db *DB) Recategorize(ctx context.Context, table *mapping.Table) (int, error) {
	all, err := db.ListTransactions(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	changed := 0
	for _, st := range all {
		next := table.Recategorize(st.Transaction)
		if next.Category == st.Category && next.Biller == st.Biller {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ?, biller = ? WHERE id = ?`,
			next.Category, next.Biller, st.ID); err != nil {
			return 0, fmt.Errorf("update transaction %d: %w", st.ID, err)
		}
		changed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return changed, nil
}
