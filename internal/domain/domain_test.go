package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Food & Dining", "Food & Dining", true},
		{"  food & dining ", "Food & Dining", true},
		{"UPI / PETTY CASH", "UPI / Petty Cash", true},
		{"other", "Other", true},
		{"Groceries and stuff", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CanonicalCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCategory_ExactOnly(t *testing.T) {
	assert.True(t, IsCategory("Shopping"))
	assert.False(t, IsCategory("shopping"))
	assert.Equal(t, CategoryOther, Categories()[len(Categories())-1])
}

func TestParseCurrency(t *testing.T) {
	c, ok := ParseCurrency(" usd ")
	assert.True(t, ok)
	assert.Equal(t, CurrencyUSD, c)

	c, ok = ParseCurrency("Unknown")
	assert.False(t, ok)
	assert.Equal(t, CurrencyUnknown, c)

	_, ok = ParseCurrency("CHF")
	assert.False(t, ok)
	assert.Len(t, Currencies(), 9)
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("CC")
	require.NoError(t, err)
	assert.Equal(t, SourceCreditCard, s)

	_, err = ParseSource("fax")
	assert.Error(t, err)

	assert.Equal(t, "Bank Transaction", SourceBank.Placeholder())
	assert.Equal(t, "Credit Card Purchase", SourceCreditCard.Placeholder())
	assert.Equal(t, "Unknown", SourceBill.Placeholder())
}

func TestTruncateDescription(t *testing.T) {
	short := "SWIGGY BANGALORE"
	assert.Equal(t, short, TruncateDescription(short))

	long := strings.Repeat("x", 60)
	got := TruncateDescription(long)
	assert.Equal(t, strings.Repeat("x", 50)+"...", got)

	exact := strings.Repeat("y", 50)
	assert.Equal(t, exact, TruncateDescription(exact))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 1, 5, 18, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
