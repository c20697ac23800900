package notionsync

import (
	"strconv"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/google/uuid"
	"github.com/jomei/notionapi"
)

// Property names of the expenses database.
const (
	PropDescription = "Description"
	PropDate        = "Date"
	PropAmount      = "Amount"
	PropCurrency    = "Currency"
	PropCategory    = "Category"
	PropBiller      = "Biller"
	PropSource      = "Source"
	PropKey         = "Transaction Key"
)

var keyNamespace = uuid.MustParse("6f1c2b8e-52a4-4f7e-9b0d-3c1e7a2d9f10")

// TransactionKey is a stable identity for tx, derived from the fields that
// do not change on recategorization. Re-exporting the same transaction
// yields the same key.
func TransactionKey(tx domain.Transaction) string {
	parts := []string{
		tx.Date.Format("2006-01-02"),
		tx.Amount.String(),
		string(tx.Currency),
		string(tx.Source),
		tx.Description,
	}
	if tx.LineNo > 0 {
		parts = append(parts, strconv.Itoa(tx.LineNo))
	}
	return uuid.NewSHA1(keyNamespace, []byte(strings.Join(parts, "|"))).String()
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

// TransactionToNotionProperties maps tx to a page of the expenses database.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	date := notionapi.Date(domain.DateOnly(tx.Date))
	amount, _ := tx.Amount.Float64()

	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{Title: richText(tx.Description)},
		PropDate:        notionapi.DateProperty{Date: &notionapi.DateObject{Start: &date}},
		PropAmount:      notionapi.NumberProperty{Number: amount},
		PropCurrency:    notionapi.SelectProperty{Select: notionapi.Option{Name: string(tx.Currency)}},
		PropCategory:    notionapi.SelectProperty{Select: notionapi.Option{Name: tx.Category}},
		PropKey:         notionapi.RichTextProperty{RichText: richText(TransactionKey(tx))},
	}
	if tx.Source != "" {
		props[PropSource] = notionapi.SelectProperty{Select: notionapi.Option{Name: string(tx.Source)}}
	}
	if tx.Biller != "" && tx.Biller != mapping.UnknownBiller {
		props[PropBiller] = notionapi.RichTextProperty{RichText: richText(tx.Biller)}
	}
	return props
}

// extractKey reads the transaction key from a page returned by the API.
func extractKey(page notionapi.Page) string {
	var texts []notionapi.RichText
	switch p := page.Properties[PropKey].(type) {
	case *notionapi.RichTextProperty:
		texts = p.RichText
	case notionapi.RichTextProperty:
		texts = p.RichText
	}
	if len(texts) == 0 {
		return ""
	}
	if texts[0].PlainText != "" {
		return texts[0].PlainText
	}
	if texts[0].Text != nil {
		return texts[0].Text.Content
	}
	return ""
}
