package parser

import (
	"fmt"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

// Outcome is the terminal kind of a parse call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNoTransactionsFound
	OutcomeExtractionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoTransactionsFound:
		return "no_transactions_found"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name in JSON and YAML.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Extraction failure reasons.
const (
	ReasonUnreadable = "Could not read PDF content"
	ReasonNoText     = "PDF appears to be empty or scanned (no text layer)"
	ReasonEmptySMS   = "Message is empty"
	ReasonEmptyBill  = "No text found in bill"
)

// Result is what a parse call produces: a list of transactions (possibly
// produced by the AI pass), nothing found, or an extraction failure. There
// is no partial variant.
type Result struct {
	Outcome      Outcome              `json:"outcome"`
	Transactions []domain.Transaction `json:"transactions,omitempty"`
	ProducedByAI bool                 `json:"produced_by_ai"`
	Reason       string               `json:"reason,omitempty"`
	// Path is the sequence of states the call went through.
	Path []State `json:"path,omitempty"`
}

// Success builds a successful result. txs must be non-empty.
func Success(txs []domain.Transaction, producedByAI bool) Result {
	return Result{Outcome: OutcomeSuccess, Transactions: txs, ProducedByAI: producedByAI}
}

// NoTransactionsFound builds the "ran, found nothing" result.
func NoTransactionsFound() Result {
	return Result{Outcome: OutcomeNoTransactionsFound}
}

// ExtractionFailed builds the unreadable-input result.
func ExtractionFailed(reason string) Result {
	return Result{Outcome: OutcomeExtractionFailed, Reason: reason}
}

// OK reports whether the call produced transactions.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func (r Result) String() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return fmt.Sprintf("success: %d transactions (ai=%t)", len(r.Transactions), r.ProducedByAI)
	case OutcomeExtractionFailed:
		return "extraction failed: " + r.Reason
	default:
		return r.Outcome.String()
	}
}
