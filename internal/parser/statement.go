package parser

import (
	"github.com/dvloznov/expense-extractor/internal/assist"
	"github.com/dvloznov/expense-extractor/internal/direction"
	"github.com/dvloznov/expense-extractor/internal/heuristic"
)

// BankParser reads bank account statement text.
type BankParser struct {
	base
	Scanner *heuristic.Scanner
}

// CreditCardParser reads credit card statement text.
type CreditCardParser struct {
	base
	Scanner *heuristic.Scanner
}

func NewBankParser(d Deps) *BankParser {
	s := heuristic.NewScanner(direction.Bank, d.table(), d.dates())
	return &BankParser{base: base{machine: statementMachine(d, s)}, Scanner: s}
}

func NewCreditCardParser(d Deps) *CreditCardParser {
	s := heuristic.NewScanner(direction.CreditCard, d.table(), d.dates())
	return &CreditCardParser{base: base{machine: statementMachine(d, s)}, Scanner: s}
}

func statementMachine(d Deps, s *heuristic.Scanner) Machine {
	return Machine{
		Source:     s.Source,
		Provider:   d.Provider,
		Normalizer: assist.Normalizer{Source: s.Source, Dates: s.Dates},
		Candidates: s.Candidates,
		MaxChars:   d.MaxChars,
		RetryChars: d.RetryChars,
	}
}

var (
	_ Parser = (*BankParser)(nil)
	_ Parser = (*CreditCardParser)(nil)
	_ Parser = (*SMSParser)(nil)
	_ Parser = (*BillParser)(nil)
)

