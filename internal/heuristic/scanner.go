// Package heuristic is the deterministic statement pass: date-anchored
// context windows, direction filtering, amount and description extraction,
// categorization and deduplication.
package heuristic

import (
	"github.com/dvloznov/expense-extractor/internal/amount"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/direction"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
)

// Scanner extracts outgoing transactions from statement text. It holds no
// mutable state, so one Scanner may serve concurrent calls.
type Scanner struct {
	Kind   direction.Kind
	Source domain.Source
	Dates  *dates.Recognizer
	Table  *mapping.Table
}

// NewScanner returns a Scanner for a bank or credit card statement.
func NewScanner(kind direction.Kind, table *mapping.Table, recognizer *dates.Recognizer) *Scanner {
	source := domain.SourceBank
	if kind == direction.CreditCard {
		source = domain.SourceCreditCard
	}
	return &Scanner{Kind: kind, Source: source, Dates: recognizer, Table: table}
}

// Candidates returns every transaction the windows yield, before
// deduplication, in document order.
func (s *Scanner) Candidates(text string) []domain.Transaction {
	var out []domain.Transaction
	for _, w := range Windows(text, s.Dates.ExtractStatement) {
		if !direction.Keep(s.Kind, w.Text) {
			continue
		}
		m, ok := amount.ExtractAnywhere(w.Text)
		if !ok {
			continue
		}
		desc := Describe(w.Text, s.Source.Placeholder())
		tx := domain.Transaction{
			Date:        w.Date,
			Description: desc,
			Amount:      m.Value,
			Currency:    m.Currency,
			Category:    s.Table.Categorize(desc),
			Source:      s.Source,
			LineNo:      w.LineNo,
		}
		if e, ok := s.Table.MatchBiller(desc); ok {
			tx.Biller = e.Biller
		}
		out = append(out, tx)
	}
	return out
}

// Scan runs the full pass and deduplicates the result.
func (s *Scanner) Scan(text string) []domain.Transaction {
	return Dedup(s.Candidates(text))
}
