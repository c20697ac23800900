package domain

import "strings"

// CategoryOther is the fallback category for anything that matches no biller
// and no keyword rule.
const CategoryOther = "Other"

// categories is the closed set of labels a Transaction may carry.
// Order is the display order used in prompts and listings.
var categories = []string{
	"Housing & Rent",
	"Utilities",
	"Groceries",
	"Food & Dining",
	"Transport & Fuel",
	"Shopping",
	"Medical & Healthcare",
	"Entertainment",
	"OTT",
	"Subscriptions",
	"Bills & Recharge",
	"Insurance",
	"Debt & EMI",
	"Investments",
	"Education & Learning",
	"Travel & Vacation",
	"Banking & Fees",
	"UPI / Petty Cash",
	"Gifts & Donations",
	"Vehicle Maintenance",
	"Pet Care",
	"Professional Fees",
	"Taxes",
	"Marketing & Ads",
	"Business Operations",
	CategoryOther,
}

var categoryIndex = func() map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[normalizeCategory(c)] = c
	}
	return m
}()

// Categories returns the closed category set, "Other" last.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// CanonicalCategory resolves name against the closed set ignoring case and
// surrounding whitespace, returning the canonical label.
func CanonicalCategory(name string) (string, bool) {
	c, ok := categoryIndex[normalizeCategory(name)]
	return c, ok
}

// IsCategory reports whether name is exactly a member of the closed set.
func IsCategory(name string) bool {
	c, ok := CanonicalCategory(name)
	return ok && c == name
}

// normalizeCategory converts to uppercase and trims whitespace for
// case-insensitive comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
