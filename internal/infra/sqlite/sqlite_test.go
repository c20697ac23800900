package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	sms := domain.Transaction{
		Date:        day(2025, 1, 5),
		Description: "ZOMATO",
		Amount:      decimal.RequireFromString("250"),
		Currency:    domain.CurrencyINR,
		Category:    "Food & Dining",
		Biller:      "ZOMATO",
		Source:      domain.SourceSMS,
		RawText:     "Rs 250 spent on ZOMATO order",
	}
	bank := domain.Transaction{
		Date:        day(2024, 12, 30),
		Description: "POS CORNER BAKERY",
		Amount:      decimal.RequireFromString("12.40"),
		Currency:    domain.CurrencyGBP,
		Category:    "Food & Dining",
		Source:      domain.SourceBank,
		LineNo:      4,
	}
	n, err := db.SaveResult(context.Background(), "job-1", parser.Success([]domain.Transaction{sms}, false))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = db.SaveResult(context.Background(), "job-2", parser.Success([]domain.Transaction{bank}, true))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestBillerOverrides(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e, err := db.SetBillerOverride(ctx, " zomato ", "groceries")
	require.NoError(t, err)
	assert.Equal(t, mapping.Entry{Biller: "ZOMATO", Category: "Groceries"}, e)

	_, err = db.SetBillerOverride(ctx, "ZOMATO", "OTT")
	require.NoError(t, err)
	_, err = db.SetBillerOverride(ctx, "CORNER BAKERY", "Food & Dining")
	require.NoError(t, err)

	list, err := db.BillerOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mapping.Entry{
		{Biller: "CORNER BAKERY", Category: "Food & Dining"},
		{Biller: "ZOMATO", Category: "OTT"},
	}, list)

	_, err = db.SetBillerOverride(ctx, "X", "Crypto")
	assert.ErrorIs(t, err, mapping.ErrUnknownCategory)
	_, err = db.SetBillerOverride(ctx, "  ", "OTT")
	assert.ErrorIs(t, err, mapping.ErrEmptyBiller)

	require.NoError(t, db.DeleteBillerOverride(ctx, "corner bakery"))
	assert.ErrorIs(t, db.DeleteBillerOverride(ctx, "corner bakery"), ErrBillerNotFound)
}

func TestTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	base := mapping.Default()

	same, err := db.Table(ctx, base)
	require.NoError(t, err)
	assert.Same(t, base, same)

	_, err = db.SetBillerOverride(ctx, "ZOMATO", "Groceries")
	require.NoError(t, err)
	table, err := db.Table(ctx, base)
	require.NoError(t, err)

	c, ok := table.Lookup("ZOMATO")
	require.True(t, ok)
	assert.Equal(t, "Groceries", c)
	assert.Equal(t, base.Len(), table.Len())
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seed(t, db)

	n, err := db.SaveResult(ctx, "job-3", parser.NoTransactionsFound())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := db.ListTransactions(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "POS CORNER BAKERY", all[0].Description)
	assert.Equal(t, "job-2", all[0].JobID)
	assert.True(t, all[0].ProducedByAI)
	assert.Equal(t, 4, all[0].LineNo)
	assert.True(t, decimal.RequireFromString("12.4").Equal(all[0].Amount))
	assert.Equal(t, day(2024, 12, 30), all[0].Date)

	sms, err := db.ListTransactions(ctx, Filter{Source: domain.SourceSMS})
	require.NoError(t, err)
	require.Len(t, sms, 1)
	assert.Equal(t, "ZOMATO", sms[0].Biller)
	assert.Equal(t, "Rs 250 spent on ZOMATO order", sms[0].RawText)

	ranged, err := db.ListTransactions(ctx, Filter{From: day(2025, 1, 1), To: day(2025, 1, 31)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, domain.SourceSMS, ranged[0].Source)

	limited, err := db.ListTransactions(ctx, Filter{Category: "Food & Dining", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecategorize(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seed(t, db)

	changed, err := db.Recategorize(ctx, mapping.Default())
	require.NoError(t, err)
	assert.Zero(t, changed)

	table, err := mapping.Default().With(mapping.Entry{Biller: "ZOMATO", Category: "Groceries"})
	require.NoError(t, err)
	changed, err = db.Recategorize(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	groceries, err := db.ListTransactions(ctx, Filter{Category: "Groceries"})
	require.NoError(t, err)
	require.Len(t, groceries, 1)
	assert.Equal(t, "ZOMATO", groceries[0].Biller)
}
