package parser

import (
	"github.com/dvloznov/expense-extractor/internal/amount"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/direction"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
)

// SMSParser reads one transactional message. Messages are single events,
// so there is no row windowing and no AI pass: any positive amount is a
// candidate. Credit-only messages are flagged Incoming, or dropped when
// DropIncoming is set.
type SMSParser struct {
	base
	table        *mapping.Table
	dates        *dates.Recognizer
	dropIncoming bool
}

func NewSMSParser(d Deps) *SMSParser {
	p := &SMSParser{table: d.table(), dates: d.dates(), dropIncoming: d.DropIncoming}
	p.machine = Machine{
		Source:      domain.SourceSMS,
		Candidates:  p.Candidates,
		EmptyReason: ReasonEmptySMS,
	}
	return p
}

// Candidates returns the message's transaction, or nothing.
func (p *SMSParser) Candidates(text string) []domain.Transaction {
	m, ok := amount.Extract(text)
	if !ok {
		return nil
	}

	incoming := direction.LooksIncoming(text)
	if incoming && p.dropIncoming {
		return nil
	}

	biller, category := p.table.DetectBiller(text)
	if biller == mapping.UnknownBiller {
		category = p.table.Categorize(text)
	}

	date, ok := p.dates.Extract(text)
	if !ok {
		date = p.dates.Now()
	}

	return []domain.Transaction{{
		Date:        date,
		Description: domain.TruncateDescription(biller),
		Amount:      m.Value,
		Currency:    m.Currency,
		Category:    category,
		Biller:      biller,
		Source:      domain.SourceSMS,
		Incoming:    incoming,
		RawText:     text,
	}}
}
