package assist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func normalizer(source domain.Source) Normalizer {
	return Normalizer{
		Source: source,
		Dates:  dates.New(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }),
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "line one\nline two", Truncate("line one\nline two\nline three", 20))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	assert.Equal(t, "₹₹", Truncate("₹₹\n₹₹₹", 4))
	assert.Equal(t, "anything", Truncate("anything", 0))
}

func TestBuildPrompt(t *testing.T) {
	bank := BuildPrompt(domain.SourceBank, "05/01/2025 SWIGGY 450.00 DR")
	assert.Contains(t, bank, "BANK ACCOUNT")
	assert.Contains(t, bank, "salary credits")
	assert.True(t, strings.HasSuffix(bank, "05/01/2025 SWIGGY 450.00 DR"))
	for _, c := range domain.Categories() {
		assert.Contains(t, bank, c)
	}
	for _, c := range domain.Currencies() {
		assert.Contains(t, bank, string(c))
	}

	card := BuildPrompt(domain.SourceCreditCard, "x")
	assert.Contains(t, card, "CREDIT CARD")
	assert.Contains(t, card, "PAYMENT RECEIVED")
}

func TestDecodeCandidates(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
	}{
		{"bare array", `[{"date":"2025-01-05"}]`, 1},
		{"fenced", "```json\n[{\"a\":1},{\"b\":2}]\n```", 2},
		{"prose around", "Here you go:\n[{\"a\":1}]\nHope this helps!", 1},
		{"non-objects skipped", `[1, "x", {"a":1}]`, 1},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCandidates(tt.raw)
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
		})
	}

	_, err := DecodeCandidates("I could not find any transactions.")
	assert.True(t, errors.Is(err, ErrNoJSONArray))

	_, err = DecodeCandidates(`[{"a":}]`)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoJSONArray))
}

func TestNormalize(t *testing.T) {
	candidates, err := DecodeCandidates(`[
		{"date":"2025-01-05","description":"SWIGGY","amount":450.5,"currency":"INR","category":"food & dining"},
		{"date":"05/01/2025","description":"  ","amount":"1,200.00","currency":"XYZ","category":"Snacks"},
		{"date":"yesterday","description":"bad date","amount":10},
		{"date":"2025-01-06","description":"zero","amount":0},
		{"date":"2025-01-06","description":"negative","amount":-12.5},
		{"description":"no date","amount":5},
		{"date":"2025-01-07","description":"no amount"},
		{"date":"2025-01-08","description":"usd","amount":9.99,"currency":"usd"}
	]`)
	require.NoError(t, err)

	txs, rejected := normalizer(domain.SourceBank).Normalize(candidates)
	require.Len(t, txs, 3)
	assert.Len(t, rejected, 5)

	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, "Food & Dining", txs[0].Category)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("450.5")))
	assert.Equal(t, domain.SourceBank, txs[0].Source)

	assert.Equal(t, "Bank Transaction", txs[1].Description)
	assert.Equal(t, domain.CategoryOther, txs[1].Category)
	assert.Equal(t, domain.CurrencyINR, txs[1].Currency)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("1200")))

	assert.Equal(t, domain.CurrencyUSD, txs[2].Currency)
}

func TestNormalize_TruncatesDescription(t *testing.T) {
	candidates := []map[string]interface{}{
		{"date": "2025-01-05", "description": strings.Repeat("A", 80), "amount": 1.0},
	}
	txs, _ := normalizer(domain.SourceCreditCard).Normalize(candidates)
	require.Len(t, txs, 1)
	assert.Equal(t, strings.Repeat("A", 50)+"...", txs[0].Description)
}

func TestAttempt(t *testing.T) {
	var seen string
	p := ProviderFunc(func(ctx context.Context, prompt string) (string, error) {
		seen = prompt
		return "```json\n[{\"date\":\"2025-01-05\",\"description\":\"UBER\",\"amount\":312.4,\"currency\":\"INR\",\"category\":\"Transport & Fuel\"}]\n```", nil
	})

	text := strings.Repeat("row\n", 10)
	out, err := Attempt(context.Background(), p, normalizer(domain.SourceCreditCard), text, 12)
	require.NoError(t, err)
	require.Len(t, out.Transactions, 1)
	assert.Empty(t, out.Rejected)
	assert.True(t, strings.HasSuffix(seen, "row\nrow\nrow"))
}

func TestAttempt_ErrorsKeepTheirKind(t *testing.T) {
	p := ProviderFunc(func(context.Context, string) (string, error) {
		return "", ErrContextLengthExceeded
	})
	_, err := Attempt(context.Background(), p, normalizer(domain.SourceBank), "x", 10)
	assert.True(t, errors.Is(err, ErrContextLengthExceeded))

	_, err = Attempt(context.Background(), Disabled{}, normalizer(domain.SourceBank), "x", 10)
	assert.True(t, errors.Is(err, ErrDisabled))

	prose := ProviderFunc(func(context.Context, string) (string, error) { return "sorry", nil })
	out, err := Attempt(context.Background(), prose, normalizer(domain.SourceBank), "x", 10)
	assert.True(t, errors.Is(err, ErrNoJSONArray))
	assert.Equal(t, "sorry", out.Raw)
}

func TestIsContextLength(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"token limit", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "The input token count (1200000) exceeds the maximum number of tokens allowed (1048576)."}, true},
		{"wrapped", errors.Join(errors.New("outer"), genai.APIError{Code: 400, Message: "request exceeds context window"}), true},
		{"other bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "Invalid JSON payload"}, false},
		{"quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "token quota limit exceeded"}, false},
		{"plain error", errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isContextLength(tt.err))
		})
	}
}

func TestDisabled(t *testing.T) {
	var p Provider = Disabled{}
	assert.False(t, p.Available())
	_, err := p.Respond(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrDisabled))

	var nilFunc ProviderFunc
	assert.False(t, nilFunc.Available())
}
