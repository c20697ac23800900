package assist

import (
	"strings"
	"unicode/utf8"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

const (
	// DefaultMaxChars bounds the statement excerpt sent with a prompt.
	DefaultMaxChars = 6000
	// DefaultRetryChars bounds the excerpt on the single retry after
	// ErrContextLengthExceeded.
	DefaultRetryChars = 3000
)

// Truncate returns at most max characters of text. When it has to cut, it
// drops the trailing partial line so the model never sees half a row.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	prefix := string([]rune(text)[:max])
	if i := strings.LastIndex(prefix, "\n"); i >= 0 {
		return prefix[:i]
	}
	return prefix
}

// BuildPrompt assembles the source-specific instruction, the closed
// category set and the (already truncated) statement excerpt.
func BuildPrompt(source domain.Source, excerpt string) string {
	var b strings.Builder

	switch source {
	case domain.SourceCreditCard:
		b.WriteString("You are a parser for CREDIT CARD statements. Extract ONLY purchases and charges.\n\n")
	default:
		b.WriteString("You are a parser for BANK ACCOUNT statements. Extract ONLY money going out of the account.\n\n")
	}

	b.WriteString("Output STRICT JSON only: a JSON array of objects, nothing else.\n")
	b.WriteString("Each object must have these fields:\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"description\": string, payee or merchant name only, at most 50 characters\n")
	b.WriteString("- \"amount\": number, positive, no currency symbol and no thousands separators\n")
	b.WriteString("- \"currency\": string, one of " + strings.Join(currencyCodes(), ", ") + "\n")
	b.WriteString("- \"category\": string, exactly one of the categories below\n\n")

	b.WriteString("Categories:\n")
	for _, c := range domain.Categories() {
		b.WriteString("  - " + c + "\n")
	}
	b.WriteString("If you are unsure, use \"" + domain.CategoryOther + "\".\n\n")

	switch source {
	case domain.SourceCreditCard:
		b.WriteString("KEEP: in-store (POS) and online purchases, food orders, fuel, ATM cash advances, EMI instalments, annual fees, late fees, interest charges, foreign currency purchases.\n")
		b.WriteString("SKIP: payments to the card (PAYMENT RECEIVED, NEFT/IMPS/UPI/NETBANKING payments), refunds, reversals, cashback, balance transfer credits, any row marked CR or Credit.\n")
		b.WriteString("Purchases appear as debits on a card statement; payments to the card are credits and must be skipped.\n\n")
	default:
		b.WriteString("KEEP: UPI payments sent, NEFT/IMPS/RTGS transfers out, POS purchases, ATM withdrawals, bill payments and recharges, cheque debits, standing instructions, bank fees, foreign currency debits.\n")
		b.WriteString("SKIP: salary credits, UPI/NEFT/IMPS received, interest credits, refunds, reversals, cashback, deposit maturity credits, any row marked CR or Credit.\n")
		b.WriteString("Only extract rows whose DEBIT column has a value.\n\n")
	}

	b.WriteString("Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n\n")
	b.WriteString("Statement text:\n")
	b.WriteString(excerpt)
	return b.String()
}

func currencyCodes() []string {
	cs := domain.Currencies()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
