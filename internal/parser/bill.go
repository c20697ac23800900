package parser

import (
	"regexp"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/amount"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/shopspring/decimal"
)

// BillParser reads receipt, invoice and payment-screenshot text. A bill
// yields at most one transaction, always in INR.
type BillParser struct {
	base
	table *mapping.Table
	dates *dates.Recognizer
}

func NewBillParser(d Deps) *BillParser {
	p := &BillParser{table: d.table(), dates: d.dates()}
	p.machine = Machine{
		Source:      domain.SourceBill,
		Candidates:  p.Candidates,
		EmptyReason: ReasonEmptyBill,
	}
	return p
}

type labelledTotal struct {
	re       *regexp.Regexp
	priority int
}

const billAmount = `\s*:?\s*(?:₹|rs\.?|inr)?\s*([\d,]+\.\d{2})`

var billTotals = []labelledTotal{
	{regexp.MustCompile(`(?i)grand\s*total` + billAmount), 100},
	{regexp.MustCompile(`(?i)(?:to\s*pay|net\s*payable)` + billAmount), 90},
	{regexp.MustCompile(`(?im)^\s*total(?:\s*amount)?` + billAmount), 80},
	{regexp.MustCompile(`(?im)^\s*amount` + billAmount), 70},
}

var paymentAmounts = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:paid|sent)\s+(?:to)?[^\d₹]*₹\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?m)^\s*₹\s*([\d,]+\.\d{2})\s*$`),
}

var payeePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:sent|paid)\s+to\s+([A-Za-z0-9]+)`),
	regexp.MustCompile(`(?im)^\s*to\s*:\s*([A-Za-z0-9 ]+?)\s*$`),
	regexp.MustCompile(`(?im)^\s*from\s*:\s*([A-Za-z0-9 ]+?)\s*$`),
}

const maxMerchantLine = 30

// Candidates returns the bill's transaction, or nothing when no amount is
// recognized.
func (p *BillParser) Candidates(text string) []domain.Transaction {
	value, ok := billTotal(text)
	if !ok {
		return nil
	}

	biller := p.biller(text)
	date, ok := p.dates.Extract(text)
	if !ok {
		date = p.dates.Now()
	}

	return []domain.Transaction{{
		Date:        date,
		Description: domain.TruncateDescription(biller),
		Amount:      value,
		Currency:    domain.CurrencyINR,
		Category:    p.table.Categorize(biller),
		Biller:      biller,
		Source:      domain.SourceBill,
		RawText:     text,
	}}
}

// billTotal picks the amount in order: the highest-priority labelled total,
// a payment-screenshot amount, then the largest two-decimal figure above 1.
func billTotal(text string) (decimal.Decimal, bool) {
	best, bestPriority := decimal.Zero, -1
	for _, t := range billTotals {
		if t.priority <= bestPriority {
			continue
		}
		if v, ok := firstAmount(t.re, text); ok {
			best, bestPriority = v, t.priority
		}
	}
	if bestPriority >= 0 {
		return best, true
	}

	for _, re := range paymentAmounts {
		if v, ok := firstAmount(re, text); ok {
			return v, true
		}
	}

	one := decimal.NewFromInt(1)
	found := false
	for _, v := range amount.All(text) {
		if v.GreaterThan(one) && (!found || v.GreaterThan(best)) {
			best, found = v, true
		}
	}
	return best, found
}

func firstAmount(re *regexp.Regexp, text string) (decimal.Decimal, bool) {
	for _, sub := range re.FindAllStringSubmatch(text, -1) {
		if v, ok := amount.Parse(sub[1]); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}

func (p *BillParser) biller(text string) string {
	for _, re := range payeePatterns {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		name := strings.TrimSpace(sub[1])
		if len(name) < 2 {
			continue
		}
		if e, ok := p.table.Normalize(name); ok {
			return e.Biller
		}
		return strings.ToUpper(name)
	}

	if e, ok := p.table.MatchBiller(text); ok {
		return e.Biller
	}
	if line, ok := merchantLine(text); ok {
		return line
	}
	return mapping.UnknownBiller
}

var skippedPrefixes = []string{"total", "amount", "date", "payment"}

// merchantLine returns the first line that reads like a shop name: not a
// number, not a label, not a transaction reference.
func merchantLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 || numeric(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "transaction id") || hasAnyPrefix(lower, skippedPrefixes) {
			continue
		}
		if r := []rune(line); len(r) > maxMerchantLine {
			line = strings.TrimSpace(string(r[:maxMerchantLine]))
		}
		return line, true
	}
	return "", false
}

func numeric(s string) bool {
	return strings.Trim(s, "0123456789.,/- ") == ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
