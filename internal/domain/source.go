package domain

import (
	"fmt"
	"strings"
)

// Source identifies which kind of text a transaction was extracted from.
type Source string

const (
	SourceSMS        Source = "sms"
	SourceBank       Source = "bank"
	SourceCreditCard Source = "credit_card"
	SourceBill       Source = "bill"
)

// Sources lists every supported source kind.
func Sources() []Source {
	return []Source{SourceSMS, SourceBank, SourceCreditCard, SourceBill}
}

// ParseSource accepts the canonical names plus a few common aliases
// ("card", "cc", "statement", "receipt").
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms", "message":
		return SourceSMS, nil
	case "bank", "statement", "bank_statement":
		return SourceBank, nil
	case "credit_card", "creditcard", "card", "cc":
		return SourceCreditCard, nil
	case "bill", "receipt", "screenshot":
		return SourceBill, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Placeholder is the description used when cleanup leaves nothing behind.
func (s Source) Placeholder() string {
	switch s {
	case SourceBank:
		return "Bank Transaction"
	case SourceCreditCard:
		return "Credit Card Purchase"
	default:
		return "Unknown"
	}
}
