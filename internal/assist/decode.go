package assist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/amount"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/shopspring/decimal"
)

// DecodeCandidates extracts the JSON array from a completion, tolerating
// code fences and prose around it. Elements that are not objects are
// skipped; an unparsable or missing array is an error.
func DecodeCandidates(raw string) ([]map[string]interface{}, error) {
	clean, ok := cleanModelJSON(raw)
	if !ok {
		return nil, fmt.Errorf("DecodeCandidates: %w", ErrNoJSONArray)
	}

	var parsed []interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("DecodeCandidates: unmarshal JSON: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(parsed))
	for _, item := range parsed {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// cleanModelJSON strips Markdown fences and keeps the text from the first
// '[' to the last ']'.
func cleanModelJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", false
	}
	return strings.TrimSpace(s[start : end+1]), true
}

// Normalizer validates decoded candidates and turns them into transactions.
type Normalizer struct {
	Source domain.Source
	Dates  *dates.Recognizer
}

// Normalize converts each candidate independently. Candidates with a
// missing or unparseable date, or a missing or non-positive amount, are
// dropped and reported in rejected; they never fail the batch.
func (n Normalizer) Normalize(candidates []map[string]interface{}) (txs []domain.Transaction, rejected []error) {
	for i, obj := range candidates {
		tx, err := n.transaction(obj)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("candidate %d: %w", i, err))
			continue
		}
		txs = append(txs, tx)
	}
	return txs, rejected
}

func (n Normalizer) transaction(obj map[string]interface{}) (domain.Transaction, error) {
	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	date, ok := n.Dates.ParseCandidate(dateStr)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("invalid date %q", dateStr)
	}

	value, err := getAmountField(obj, "amount")
	if err != nil {
		return domain.Transaction{}, err
	}
	if !value.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("amount %s is not positive", value)
	}

	desc, err := getStringField(obj, "description", false)
	if err != nil {
		return domain.Transaction{}, err
	}
	desc = strings.Join(strings.Fields(desc), " ")
	if desc == "" {
		desc = n.Source.Placeholder()
	}

	category := domain.CategoryOther
	if raw, _ := getOptionalStringField(obj, "category"); raw != nil {
		if c, ok := domain.CanonicalCategory(*raw); ok {
			category = c
		}
	}

	currency := domain.DefaultCurrency
	if raw, _ := getOptionalStringField(obj, "currency"); raw != nil {
		if c, ok := domain.ParseCurrency(*raw); ok {
			currency = c
		}
	}

	return domain.Transaction{
		Date:        date,
		Description: domain.TruncateDescription(desc),
		Amount:      value,
		Currency:    currency,
		Category:    category,
		Source:      n.Source,
	}, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" && required {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getAmountField accepts a JSON number or a numeric string such as
// "1,234.50"; models are not consistent about which they emit.
func getAmountField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		d, ok := amount.Parse(val)
		if !ok {
			return decimal.Zero, fmt.Errorf("field %q: %q is not a positive number", key, val)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
