// Package direction decides whether a statement row or message describes
// money leaving the account.
//
// Keywords are matched against whole tokens of the upper-cased text split on
// every non-letter. The bare markers CR, DR and INT must equal a token;
// every other keyword may also be a token prefix so DEBIT matches DEBITED
// and FEE matches FEES. Multi-word keywords match consecutive tokens.
package direction

import (
	"strings"
	"unicode"
)

// Kind selects the keyword policy.
type Kind int

const (
	Bank Kind = iota
	CreditCard
)

func (k Kind) String() string {
	switch k {
	case Bank:
		return "bank"
	case CreditCard:
		return "credit_card"
	default:
		return "unknown"
	}
}

type keyword []string

type vocabulary []keyword

func words(list ...string) vocabulary {
	v := make(vocabulary, len(list))
	for i, s := range list {
		v[i] = strings.Fields(s)
	}
	return v
}

var (
	bankDebit  = words("DR", "DEBIT", "UPI", "IMPS", "NEFT", "RTGS", "ATM", "POS", "WITHDRAWAL", "PAID", "TRF", "TRANSFER")
	bankCredit = words("CR", "CREDIT", "SALARY", "REFUND", "REVERSAL", "CASHBACK", "INT", "INTEREST")

	cardPurchase = words("POS", "PURCHASE", "MERCHANT", "AMAZON", "FLIPKART", "SWIGGY", "ZOMATO", "UBER",
		"ATM", "ECOM", "EMI", "FEE", "CHARGE", "INTEREST")
	cardPayment = words("PAYMENT", "CR", "CREDIT", "REFUND", "REVERSAL", "CASHBACK", "TRANSFER CREDIT",
		"NETBANKING", "NEFT", "IMPS")
	cardVeto = words("PAYMENT RECEIVED", "TRANSFER CREDIT", "NETBANKING TRANSFER")

	smsDebit = words("DEBIT", "DR", "SPENT", "PAID", "SENT", "WITHDRAWN", "PURCHASE", "CHARGED", "USED")
	smsCredit = words("CREDIT", "CR", "RECEIVED", "REFUND", "REVERSAL", "REVERSED", "CASHBACK", "DEPOSITED")
	// "credit card" names an instrument, not a direction.
	smsNeutral = words("CREDIT CARD")
)

// Keep reports whether the context window is an outgoing transaction for
// the given statement kind.
//
// Bank rows need debit vocabulary and no credit vocabulary; credit wins
// ties. Card rows are kept unless payment vocabulary appears without
// purchase evidence, and PAYMENT RECEIVED, TRANSFER CREDIT and NETBANKING
// TRANSFER always discard.
func Keep(kind Kind, context string) bool {
	toks := tokenize(context)
	switch kind {
	case Bank:
		return bankDebit.in(toks) && !bankCredit.in(toks)
	case CreditCard:
		if cardVeto.in(toks) {
			return false
		}
		return !cardPayment.in(toks) || cardPurchase.in(toks)
	default:
		return false
	}
}

// LooksIncoming reports whether a single message reads as money coming in:
// credit vocabulary present and no debit vocabulary.
func LooksIncoming(text string) bool {
	toks := smsNeutral.strip(tokenize(text))
	return smsCredit.in(toks) && !smsDebit.in(toks)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func (v vocabulary) in(toks []string) bool {
	for _, k := range v {
		if k.at(toks) >= 0 {
			return true
		}
	}
	return false
}

// strip removes every occurrence of the vocabulary's phrases from toks.
func (v vocabulary) strip(toks []string) []string {
	out := toks
	for _, k := range v {
		for {
			i := k.at(out)
			if i < 0 {
				break
			}
			next := make([]string, 0, len(out)-len(k))
			next = append(next, out[:i]...)
			out = append(next, out[i+len(k):]...)
		}
	}
	return out
}

// at returns the index of the first token run matching k, or -1.
func (k keyword) at(toks []string) int {
	for i := 0; i+len(k) <= len(toks); i++ {
		matched := true
		for j, w := range k {
			if !wordMatches(w, toks[i+j]) {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

// exactOnly are markers that occur inside unrelated words (SCREEN, DRIVE,
// INTERNET).
var exactOnly = map[string]bool{"CR": true, "DR": true, "INT": true}

func wordMatches(keyword, token string) bool {
	if exactOnly[keyword] {
		return token == keyword
	}
	return strings.HasPrefix(token, keyword)
}
