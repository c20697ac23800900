// Package amount recognizes currency-tagged monetary amounts in free text.
package amount

import (
	"regexp"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/shopspring/decimal"
)

// Match is an amount found in text together with the currency it was tagged with.
type Match struct {
	Value    decimal.Decimal
	Currency domain.Currency
	// Tagged is false when the amount came from a currency-less fallback and
	// Currency is the default policy currency.
	Tagged bool
}

type currencyPattern struct {
	re       *regexp.Regexp
	currency domain.Currency
}

// number is a numeric run that starts with a digit and may carry thousands
// separators and a fractional part.
const number = `(\d[\d,]*(?:\.\d+)?)`

func before(marker string, c domain.Currency) currencyPattern {
	return currencyPattern{re: regexp.MustCompile(`(?i)(?:` + marker + `)\s*` + number), currency: c}
}

func after(marker string, c domain.Currency) currencyPattern {
	return currencyPattern{re: regexp.MustCompile(`(?i)` + number + `\s*(?:` + marker + `)`), currency: c}
}

// taggedPatterns are tried in order; INR and the major currencies come first.
// Alphabetic markers carry word boundaries so "users 20" is not read as Rs 20.
var taggedPatterns = []currencyPattern{
	before(`\bRs\.?|\bINR|₹`, domain.CurrencyINR),
	after(`Rs\b\.?|INR\b`, domain.CurrencyINR),
	before(`\bUSD|\bUS\$|(?:^|[^A-Za-z])\$`, domain.CurrencyUSD),
	after(`USD\b|US\$`, domain.CurrencyUSD),
	before(`\bEUR|€`, domain.CurrencyEUR),
	after(`EUR\b|€`, domain.CurrencyEUR),
	before(`\bGBP|£`, domain.CurrencyGBP),
	after(`GBP\b|£`, domain.CurrencyGBP),
	before(`\bAED|\bDH`, domain.CurrencyAED),
	after(`AED\b|DH\b`, domain.CurrencyAED),
	before(`\bSGD|\bS\$`, domain.CurrencySGD),
	after(`SGD\b|S\$`, domain.CurrencySGD),
	before(`\bAUD|\bA\$`, domain.CurrencyAUD),
	after(`AUD\b|A\$`, domain.CurrencyAUD),
	before(`\bCAD|\bC\$`, domain.CurrencyCAD),
	after(`CAD\b|C\$`, domain.CurrencyCAD),
	before(`\bJPY|¥`, domain.CurrencyJPY),
	after(`JPY\b|¥`, domain.CurrencyJPY),
}

// anchoredPatterns find a two-decimal amount next to direction vocabulary.
var anchoredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:debited|credited|paid|spent|received).*?(\d[\d,]*\.\d{2})`),
	regexp.MustCompile(`(?i)(\d[\d,]*\.\d{2})\s*(?:debited|credited)`),
}

var twoDecimal = regexp.MustCompile(`\d[\d,]*\.\d{2}`)

// Extract returns the first positive currency-tagged amount in text. When no
// tagged amount exists it falls back to a two-decimal amount anchored on
// debited/credited/paid/spent/received and assumes domain.DefaultCurrency.
func Extract(text string) (Match, bool) {
	if m, ok := Tagged(text); ok {
		return m, true
	}
	for _, re := range anchoredPatterns {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		if v, ok := Parse(sub[1]); ok {
			return Match{Value: v, Currency: domain.DefaultCurrency}, true
		}
	}
	return Match{}, false
}

// ExtractAnywhere is the statement-row variant: after the tagged patterns it
// accepts the first two-decimal amount anywhere in text. Statement columns
// rarely repeat the currency on every row.
func ExtractAnywhere(text string) (Match, bool) {
	if m, ok := Tagged(text); ok {
		return m, true
	}
	if raw := twoDecimal.FindString(text); raw != "" {
		if v, ok := Parse(raw); ok {
			return Match{Value: v, Currency: domain.DefaultCurrency}, true
		}
	}
	return Match{}, false
}

// Tagged tries only the currency-tagged patterns. Each pattern contributes
// its first match; a non-positive value moves on to the next pattern.
func Tagged(text string) (Match, bool) {
	for _, p := range taggedPatterns {
		sub := p.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		if v, ok := Parse(sub[1]); ok {
			return Match{Value: v, Currency: p.currency, Tagged: true}, true
		}
	}
	return Match{}, false
}

// All returns every positive two-decimal amount in text, in order.
func All(text string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, raw := range twoDecimal.FindAllString(text, -1) {
		if v, ok := Parse(raw); ok {
			out = append(out, v)
		}
	}
	return out
}

// Parse strips thousands separators and parses s as a decimal, reporting
// false for anything that is not strictly positive.
func Parse(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimRight(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), ".")
	if cleaned == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}
