package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
)

var ErrBillerNotFound = errors.New("biller override not found")

// BillerOverrides returns every user override, ordered by biller.
func (db *DB) BillerOverrides(ctx context.Context) ([]mapping.Entry, error) {
	rows, err := db.QueryContext(ctx, `SELECT biller, category FROM biller_overrides ORDER BY biller`)
	if err != nil {
		return nil, fmt.Errorf("query biller overrides: %w", err)
	}
	defer rows.Close()

	var entries []mapping.Entry
	for rows.Next() {
		var e mapping.Entry
		if err := rows.Scan(&e.Biller, &e.Category); err != nil {
			return nil, fmt.Errorf("scan biller override: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetBillerOverride maps biller to category, replacing any earlier override.
// The category must belong to the closed set.
func (db *DB) SetBillerOverride(ctx context.Context, biller, category string) (mapping.Entry, error) {
	biller = strings.ToUpper(strings.TrimSpace(biller))
	if biller == "" {
		return mapping.Entry{}, mapping.ErrEmptyBiller
	}
	canonical, ok := domain.CanonicalCategory(category)
	if !ok {
		return mapping.Entry{}, fmt.Errorf("category %q: %w", category, mapping.ErrUnknownCategory)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO biller_overrides (biller, category, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(biller) DO UPDATE SET category = excluded.category, updated_at = excluded.updated_at
	`, biller, canonical)
	if err != nil {
		return mapping.Entry{}, fmt.Errorf("upsert biller override: %w", err)
	}
	return mapping.Entry{Biller: biller, Category: canonical}, nil
}

// DeleteBillerOverride removes an override. Built-in mappings are not
// affected.
func (db *DB) DeleteBillerOverride(ctx context.Context, biller string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM biller_overrides WHERE biller = ?`,
		strings.ToUpper(strings.TrimSpace(biller)))
	if err != nil {
		return fmt.Errorf("delete biller override: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete biller override: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", biller, ErrBillerNotFound)
	}
	return nil
}

// Table layers the stored overrides over base.
func (db *DB) Table(ctx context.Context, base *mapping.Table) (*mapping.Table, error) {
	overrides, err := db.BillerOverrides(ctx)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return base, nil
	}
	return base.With(overrides...)
}
