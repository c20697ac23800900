package heuristic

import (
	"strings"
	"time"
)

// WindowSpan is how many lines after an anchor line join its context window.
const WindowSpan = 2

// Window is the context assembled around one date anchor line.
type Window struct {
	LineNo int       // 1-based index of the anchor line
	Date   time.Time // date recognized on the anchor line
	Text   string    // anchor line plus up to WindowSpan following lines
}

// DateFinder recognizes a date on a single line.
type DateFinder func(line string) (time.Time, bool)

// Windows builds one Window per non-empty line on which find recognizes a
// date. Statement renderers wrap amounts and descriptions onto following
// lines, so each window also carries the next WindowSpan lines, bounded at
// the end of the text.
func Windows(text string, find DateFinder) []Window {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []Window
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		date, ok := find(line)
		if !ok {
			continue
		}

		parts := []string{line}
		for j := i + 1; j <= i+WindowSpan && j < len(lines); j++ {
			if next := strings.TrimSpace(lines[j]); next != "" {
				parts = append(parts, next)
			}
		}
		out = append(out, Window{LineNo: i + 1, Date: date, Text: strings.Join(parts, " ")})
	}
	return out
}
