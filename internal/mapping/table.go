// Package mapping holds the biller/category mapping table that every parser
// uses to assign categories.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"golang.org/x/text/cases"
)

// UnknownBiller is reported by DetectBiller when no known phrase occurs.
const UnknownBiller = "Unknown"

var (
	ErrUnknownCategory = errors.New("category is not in the closed category set")
	ErrDuplicateBiller = errors.New("biller already present")
	ErrEmptyBiller     = errors.New("biller is empty")
)

// Entry maps one biller phrase to a category. Billers are stored upper-cased.
type Entry struct {
	Biller   string `json:"biller" yaml:"biller"`
	Category string `json:"category" yaml:"category"`
}

// KeywordRule assigns Category when any of the lowercase Keywords occurs.
type KeywordRule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

type phrase struct {
	folded string
	entry  Entry
}

// Table is an immutable biller/category lookup. It is safe for concurrent
// use; edits return a new Table.
type Table struct {
	entries []Entry        // declaration order
	index   map[string]int // folded biller -> position in entries
	ordered []phrase       // longest phrase first, ties in declaration order
	rules   []KeywordRule  // keywords folded
}

// fold case-folds s. A cases.Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NewTable validates entries and rules and builds a Table. Categories are
// resolved case-insensitively against the closed set; biller identity is
// case-insensitive.
func NewTable(entries []Entry, rules []KeywordRule) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
		ordered: make([]phrase, 0, len(entries)),
		rules:   make([]KeywordRule, 0, len(rules)),
	}

	for _, e := range entries {
		biller := strings.ToUpper(strings.TrimSpace(e.Biller))
		if biller == "" {
			return nil, fmt.Errorf("NewTable: %w", ErrEmptyBiller)
		}
		category, ok := domain.CanonicalCategory(e.Category)
		if !ok {
			return nil, fmt.Errorf("NewTable: biller %q category %q: %w", biller, e.Category, ErrUnknownCategory)
		}
		key := fold(biller)
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("NewTable: %q: %w", biller, ErrDuplicateBiller)
		}
		entry := Entry{Biller: biller, Category: category}
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, entry)
		t.ordered = append(t.ordered, phrase{folded: key, entry: entry})
	}

	sort.SliceStable(t.ordered, func(i, j int) bool {
		return utf8.RuneCountInString(t.ordered[i].entry.Biller) > utf8.RuneCountInString(t.ordered[j].entry.Biller)
	})

	for _, r := range rules {
		category, ok := domain.CanonicalCategory(r.Category)
		if !ok {
			return nil, fmt.Errorf("NewTable: keyword rule %q: %w", r.Category, ErrUnknownCategory)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k == "" {
				continue
			}
			keywords = append(keywords, fold(k))
		}
		t.rules = append(t.rules, KeywordRule{Category: category, Keywords: keywords})
	}

	return t, nil
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(defaultEntries, defaultKeywordRules)
	if err != nil {
		panic(fmt.Sprintf("mapping: built-in seed is invalid: %v", err))
	}
	return t
})

// Default returns the table built from the built-in seed data.
func Default() *Table {
	return defaultTable()
}

// DefaultEntries returns a copy of the built-in biller seed.
func DefaultEntries() []Entry {
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out
}

// Categorize returns the category for text. Billers are tried longest first
// so "AMAZON PAY" wins over "AMAZON"; then keyword rules in declaration
// order; otherwise "Other". Matching is case-insensitive substring search.
func (t *Table) Categorize(text string) string {
	folded := fold(text)
	for _, p := range t.ordered {
		if strings.Contains(folded, p.folded) {
			return p.entry.Category
		}
	}
	for _, r := range t.rules {
		for _, k := range r.Keywords {
			if strings.Contains(folded, k) {
				return r.Category
			}
		}
	}
	return domain.CategoryOther
}

// Lookup returns the category mapped to exactly this biller phrase.
func (t *Table) Lookup(biller string) (string, bool) {
	i, ok := t.index[fold(strings.TrimSpace(biller))]
	if !ok {
		return "", false
	}
	return t.entries[i].Category, true
}

// Billers returns every biller phrase in match priority order.
func (t *Table) Billers() []string {
	out := make([]string, len(t.ordered))
	for i, p := range t.ordered {
		out[i] = p.entry.Biller
	}
	return out
}

// Entries returns the mappings in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// EntriesFor returns the mappings assigned to category, in declaration order.
func (t *Table) EntriesFor(category string) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of biller mappings.
func (t *Table) Len() int {
	return len(t.entries)
}

// DetectBiller returns the known biller that starts earliest in text, with
// its category. Equal start positions go to the longer phrase, then to the
// earlier declaration. Without a match it returns ("Unknown", "Other").
func (t *Table) DetectBiller(text string) (biller, category string) {
	folded := fold(text)
	best := -1
	for _, p := range t.ordered {
		pos := strings.Index(folded, p.folded)
		if pos < 0 {
			continue
		}
		if best < 0 || pos < best {
			best = pos
			biller, category = p.entry.Biller, p.entry.Category
		}
	}
	if best < 0 {
		return UnknownBiller, domain.CategoryOther
	}
	return biller, category
}

// MatchBiller returns the longest known biller contained in text.
func (t *Table) MatchBiller(text string) (Entry, bool) {
	folded := fold(text)
	for _, p := range t.ordered {
		if strings.Contains(folded, p.folded) {
			return p.entry, true
		}
	}
	return Entry{}, false
}

// Normalize maps a free-form payee name to a known biller when one contains
// the other, longest biller first. It reports false when nothing matches.
func (t *Table) Normalize(name string) (Entry, bool) {
	folded := fold(strings.TrimSpace(name))
	if folded == "" {
		return Entry{}, false
	}
	for _, p := range t.ordered {
		if strings.Contains(folded, p.folded) || strings.Contains(p.folded, folded) {
			return p.entry, true
		}
	}
	return Entry{}, false
}

// Recategorize re-derives biller and category the way the parser for
// tx.Source first did, against this table. The result depends only on the
// transaction and the table.
//
// SMS use the raw message. Bills keep their payee, since the full receipt
// text carries reference numbers and bank names unrelated to it. Statement
// rows use the description.
func (t *Table) Recategorize(tx domain.Transaction) domain.Transaction {
	switch {
	case tx.Source == domain.SourceBill:
		tx.Category = t.Categorize(tx.Biller)
	case tx.RawText != "":
		biller, category := t.DetectBiller(tx.RawText)
		if biller == UnknownBiller {
			category = t.Categorize(tx.RawText)
		}
		tx.Biller = biller
		tx.Category = category
	default:
		tx.Category = t.Categorize(tx.Description)
		tx.Biller = ""
		if e, ok := t.MatchBiller(tx.Description); ok {
			tx.Biller = e.Biller
		}
	}
	return tx
}

// With returns a new table where each entry replaces the mapping of the same
// biller or, if the biller is new, is appended. The receiver is unchanged.
func (t *Table) With(entries ...Entry) (*Table, error) {
	merged := t.Entries()
	pos := make(map[string]int, len(t.index))
	for k, v := range t.index {
		pos[k] = v
	}
	for _, e := range entries {
		key := fold(strings.ToUpper(strings.TrimSpace(e.Biller)))
		if i, ok := pos[key]; ok {
			merged[i].Category = e.Category
			continue
		}
		pos[key] = len(merged)
		merged = append(merged, e)
	}
	out, err := NewTable(merged, t.rules)
	if err != nil {
		return nil, fmt.Errorf("With: %w", err)
	}
	return out, nil
}

// Without returns a new table lacking the named billers. Unknown names are
// ignored.
func (t *Table) Without(billers ...string) *Table {
	drop := make(map[string]bool, len(billers))
	for _, b := range billers {
		drop[fold(strings.ToUpper(strings.TrimSpace(b)))] = true
	}
	kept := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if !drop[fold(e.Biller)] {
			kept = append(kept, e)
		}
	}
	out, err := NewTable(kept, t.rules)
	if err != nil {
		// kept is a subset of already validated entries
		panic(fmt.Sprintf("mapping: Without: %v", err))
	}
	return out
}
