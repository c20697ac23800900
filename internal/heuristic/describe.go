package heuristic

import (
	"regexp"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

// noise is removed from a context window, in order, before what is left is
// taken as the description.
var noise = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`(?i)\b\d{1,2}[ -](?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?[ -]\d{2,4}\b`),
	regexp.MustCompile(`[\d,]+\.\d{2}`),
	regexp.MustCompile(`(?i)\b(?:DR|CR|DEBIT|CREDIT)\b`),
	regexp.MustCompile(`\b\d{10,}\b`),
}

// Describe strips dates, two-decimal amounts, DR/CR/DEBIT/CREDIT markers and
// digit runs of ten or more (account and reference numbers) from context,
// collapses whitespace and truncates to domain.MaxDescriptionLength. An
// empty result becomes placeholder.
func Describe(context, placeholder string) string {
	s := context
	for _, re := range noise {
		s = re.ReplaceAllString(s, " ")
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return placeholder
	}
	return domain.TruncateDescription(s)
}
