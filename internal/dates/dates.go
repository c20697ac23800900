// Package dates recognizes transaction dates written in the formats Indian
// banks, card issuers and payment apps commonly use.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

const monthNames = `(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?`

type layout int

const (
	dayMonthYear layout = iota // numeric or named month, day first
	monthDayYear               // named month first
	yearMonthDay               // ISO
)

type format struct {
	name   string
	re     *regexp.Regexp
	layout layout
}

var (
	slashFormat    = format{"DD/MM/YY", regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`), dayMonthYear}
	dashFormat     = format{"DD-MM-YY", regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4}|\d{2})\b`), dayMonthYear}
	dotFormat      = format{"DD.MM.YY", regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`), dayMonthYear}
	dashMonFormat  = format{"DD-Mon-YY", regexp.MustCompile(`(?i)\b(\d{1,2})-` + monthNames + `-(\d{4}|\d{2})\b`), dayMonthYear}
	spaceMonFormat = format{"DD Mon YY", regexp.MustCompile(`(?i)\b(\d{1,2})\s+` + monthNames + `\s+(\d{4}|\d{2})\b`), dayMonthYear}
	monDayFormat   = format{"Mon DD, YYYY", regexp.MustCompile(`(?i)\b` + monthNames + `\s+(\d{1,2}),?\s+(\d{4})\b`), monthDayYear}
	isoFormat      = format{"YYYY-MM-DD", regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), yearMonthDay}
)

// messageFormats is the full ordered list used for SMS and bill text.
var messageFormats = []format{slashFormat, dashFormat, dotFormat, dashMonFormat, spaceMonFormat, monDayFormat, isoFormat}

// statementFormats are the forms statement renderers put at the start of a row.
var statementFormats = []format{slashFormat, dashFormat, dashMonFormat, spaceMonFormat}

// candidateLayouts are accepted for dates returned by the completion service.
var candidateLayouts = []string{"2006-01-02", "2/1/2006", "2-1-2006", "1/2/2006", "2/1/06", "2-1-06"}

// Recognizer finds dates in text. The zero value uses the wall clock for
// century correction.
type Recognizer struct {
	now func() time.Time
}

// New returns a Recognizer that reads the current time from now. A nil now
// means time.Now.
func New(now func() time.Time) *Recognizer {
	return &Recognizer{now: now}
}

func (r *Recognizer) clock() time.Time {
	if r == nil || r.now == nil {
		return time.Now()
	}
	return r.now()
}

// Now returns the recognizer's notion of the current calendar date.
func (r *Recognizer) Now() time.Time {
	return domain.DateOnly(r.clock())
}

// Extract returns the first date found in text trying every supported
// format in order. Within a format the earliest valid occurrence is used.
func (r *Recognizer) Extract(text string) (time.Time, bool) {
	return r.extract(text, messageFormats)
}

// ExtractStatement is the statement-row variant. It only recognizes the
// day-first numeric and named-month forms so amounts like 1.250.00 are not
// misread as dates.
func (r *Recognizer) ExtractStatement(line string) (time.Time, bool) {
	return r.extract(line, statementFormats)
}

func (r *Recognizer) extract(text string, formats []format) (time.Time, bool) {
	for _, f := range formats {
		for _, sub := range f.re.FindAllStringSubmatch(text, -1) {
			if t, ok := f.build(sub); ok {
				return r.Correct(t), true
			}
		}
	}
	return time.Time{}, false
}

// ParseCandidate parses a date string produced by the completion service.
// Two-digit years are always read as 20YY.
func (r *Recognizer) ParseCandidate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range candidateLayouts {
		t, err := time.Parse(l, s)
		if err != nil {
			continue
		}
		if strings.HasSuffix(l, "/06") || strings.HasSuffix(l, "-06") {
			t = time.Date(2000+t.Year()%100, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return r.Correct(t), true
	}
	return time.Time{}, false
}

// Correct repairs a mis-parsed century: a year more than one year ahead of
// the current year becomes (year mod 100) + 2000. A two-digit year already
// lands in 2000..2099 so the correction only changes four-digit artifacts
// such as 3025 or 2125. Dates that would become invalid are left alone.
func (r *Recognizer) Correct(t time.Time) time.Time {
	t = domain.DateOnly(t)
	if t.Year() <= r.clock().Year()+1 {
		return t
	}
	fixed, ok := calendarDate(t.Year()%100+2000, int(t.Month()), t.Day())
	if !ok {
		return t
	}
	return fixed
}

func (f format) build(sub []string) (time.Time, bool) {
	var dayStr, monStr, yearStr string
	switch f.layout {
	case dayMonthYear:
		dayStr, monStr, yearStr = sub[1], sub[2], sub[3]
	case monthDayYear:
		monStr, dayStr, yearStr = sub[1], sub[2], sub[3]
	case yearMonthDay:
		yearStr, monStr, dayStr = sub[1], sub[2], sub[3]
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	month, ok := monthNumber(monStr)
	if !ok {
		return time.Time{}, false
	}
	year, ok := fullYear(yearStr)
	if !ok {
		return time.Time{}, false
	}
	return calendarDate(year, month, day)
}

func monthNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	switch strings.ToLower(s[:3]) {
	case "jan":
		return 1, true
	case "feb":
		return 2, true
	case "mar":
		return 3, true
	case "apr":
		return 4, true
	case "may":
		return 5, true
	case "jun":
		return 6, true
	case "jul":
		return 7, true
	case "aug":
		return 8, true
	case "sep":
		return 9, true
	case "oct":
		return 10, true
	case "nov":
		return 11, true
	case "dec":
		return 12, true
	}
	return 0, false
}

func fullYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 2:
		return 2000 + n, true
	case 4:
		return n, true
	default:
		return 0, false
	}
}

// calendarDate rejects dates time.Date would silently normalize, such as 31/02.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
