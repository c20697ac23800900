package assist

import (
	"context"
	"fmt"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

// Outcome is the result of one completion round trip.
type Outcome struct {
	Transactions []domain.Transaction
	Rejected     []error // candidates dropped by validation
	Raw          string  // unmodified completion text
}

// Attempt sends one prompt built from text cut to maxChars and normalizes
// the reply. Provider errors are returned wrapped so errors.Is still sees
// ErrContextLengthExceeded.
func Attempt(ctx context.Context, p Provider, n Normalizer, text string, maxChars int) (Outcome, error) {
	prompt := BuildPrompt(n.Source, Truncate(text, maxChars))

	raw, err := p.Respond(ctx, prompt)
	if err != nil {
		return Outcome{}, fmt.Errorf("Attempt: %w", err)
	}

	candidates, err := DecodeCandidates(raw)
	if err != nil {
		return Outcome{Raw: raw}, fmt.Errorf("Attempt: %w", err)
	}

	txs, rejected := n.Normalize(candidates)
	return Outcome{Transactions: txs, Rejected: rejected, Raw: raw}, nil
}
