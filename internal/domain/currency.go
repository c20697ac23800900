package domain

import "strings"

// Currency is an ISO-4217 style code recognized by the amount recognizer.
type Currency string

const (
	CurrencyINR     Currency = "INR"
	CurrencyUSD     Currency = "USD"
	CurrencyEUR     Currency = "EUR"
	CurrencyGBP     Currency = "GBP"
	CurrencyAED     Currency = "AED"
	CurrencySGD     Currency = "SGD"
	CurrencyAUD     Currency = "AUD"
	CurrencyCAD     Currency = "CAD"
	CurrencyJPY     Currency = "JPY"
	CurrencyUnknown Currency = "Unknown"
)

// DefaultCurrency is assumed when an amount carries no currency marker.
// The primary market is Indian bank and payment messages, so this is a
// policy, not an inference.
const DefaultCurrency = CurrencyINR

var knownCurrencies = []Currency{
	CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyAED,
	CurrencySGD, CurrencyAUD, CurrencyCAD, CurrencyJPY,
}

// Currencies returns the nine recognized codes in recognition order.
func Currencies() []Currency {
	out := make([]Currency, len(knownCurrencies))
	copy(out, knownCurrencies)
	return out
}

// Symbol returns the display symbol for c.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyINR:
		return "₹"
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	case CurrencyAED:
		return "AED"
	case CurrencySGD:
		return "S$"
	case CurrencyAUD:
		return "A$"
	case CurrencyCAD:
		return "C$"
	case CurrencyJPY:
		return "¥"
	default:
		return "?"
	}
}

// ParseCurrency maps a 3-letter code (any case, surrounding spaces allowed)
// onto one of the nine known currencies.
func ParseCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	for _, k := range knownCurrencies {
		if c == k {
			return k, true
		}
	}
	return CurrencyUnknown, false
}
