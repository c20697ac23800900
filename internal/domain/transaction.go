package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the longest description a Transaction carries
// before the ellipsis marker is appended.
const MaxDescriptionLength = 50

// Transaction is one outgoing expense recognized in SMS, statement or bill text.
// This is a domain struct, not a storage row; the BigQuery, SQLite and Notion
// sinks each map it into their own schema.
type Transaction struct {
	Date        time.Time       `json:"date"`               // calendar date, midnight UTC
	Description string          `json:"description"`        // never empty, at most 50 chars + "..."
	Amount      decimal.Decimal `json:"amount"`             // always > 0
	Currency    Currency        `json:"currency"`           // one of the enumerated codes
	Category    string          `json:"category"`           // member of the closed category set
	Biller      string          `json:"biller,omitempty"`   // matched biller phrase, SMS and bills only
	Source      Source          `json:"source,omitempty"`   // which parser produced it
	Incoming    bool            `json:"incoming,omitempty"` // SMS only: credit vocabulary without debit vocabulary
	RawText     string          `json:"raw_text,omitempty"` // original SMS/bill body, used for recategorization
	LineNo      int             `json:"line_no,omitempty"`  // 1-based anchor line for statement rows
}

// DateOnly truncates t to a calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TruncateDescription applies the 50-character limit, appending "..." when
// the text had to be cut. Length is counted in runes.
func TruncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= MaxDescriptionLength {
		return s
	}
	return string(r[:MaxDescriptionLength]) + "..."
}
