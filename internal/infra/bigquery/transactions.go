package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	ParsingRunID  string `bigquery:"parsing_run_id"` // NULLABLE

	Source          string     `bigquery:"source"`           // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC
	Currency string   `bigquery:"currency"` // REQUIRED STRING

	Description  string              `bigquery:"description"`   // REQUIRED
	Biller       bigquery.NullString `bigquery:"biller"`        // NULLABLE
	CategoryName string              `bigquery:"category_name"` // REQUIRED

	IsIncoming   bigquery.NullBool `bigquery:"is_incoming"`    // NULLABLE, SMS only
	ProducedByAI bool              `bigquery:"produced_by_ai"` // REQUIRED

	RawText         bigquery.NullString `bigquery:"raw_text"`          // NULLABLE
	StatementLineNo bigquery.NullInt64  `bigquery:"statement_line_no"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewTransactionRow maps a parsed transaction to a ledger row with a fresh ID.
func NewTransactionRow(tx domain.Transaction, parsingRunID string, producedByAI bool) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   uuid.NewString(),
		ParsingRunID:    parsingRunID,
		Source:          string(tx.Source),
		TransactionDate: civil.DateOf(tx.Date),
		Amount:          tx.Amount.Rat(),
		Currency:        string(tx.Currency),
		Description:     tx.Description,
		Biller:          nullString(tx.Biller),
		CategoryName:    tx.Category,
		ProducedByAI:    producedByAI,
		RawText:         nullString(tx.RawText),
		CreatedTS:       time.Now().UTC(),
	}
	if tx.Source == domain.SourceSMS {
		row.IsIncoming = bigquery.NullBool{Bool: tx.Incoming, Valid: true}
	}
	if tx.LineNo > 0 {
		row.StatementLineNo = bigquery.NullInt64{Int64: int64(tx.LineNo), Valid: true}
	}
	return row
}

// Transaction maps the row back. NUMERIC carries nine fractional digits,
// which decimal keeps exactly.
func (r *TransactionRow) Transaction() (domain.Transaction, error) {
	if r.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: amount is NULL", r.TransactionID)
	}
	amount, err := decimal.NewFromString(r.Amount.FloatString(9))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: amount: %w", r.TransactionID, err)
	}
	tx := domain.Transaction{
		Date:        r.TransactionDate.In(time.UTC),
		Description: r.Description,
		Amount:      amount,
		Currency:    domain.Currency(r.Currency),
		Category:    r.CategoryName,
		Biller:      r.Biller.StringVal,
		Source:      domain.Source(r.Source),
		Incoming:    r.IsIncoming.Valid && r.IsIncoming.Bool,
		RawText:     r.RawText.StringVal,
	}
	if r.StatementLineNo.Valid {
		tx.LineNo = int(r.StatementLineNo.Int64)
	}
	return tx, nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
