package heuristic

import "github.com/dvloznov/expense-extractor/internal/domain"

type dedupKey struct {
	day    int64
	amount string
}

// Dedup keeps the first transaction for every (date, amount) pair and
// preserves input order. Overlapping windows can detect the same row twice
// with slightly different descriptions, so the description is not part of
// the key.
func Dedup(txs []domain.Transaction) []domain.Transaction {
	seen := make(map[dedupKey]bool, len(txs))
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		k := dedupKey{day: tx.Date.Unix(), amount: tx.Amount.String()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, tx)
	}
	return out
}
