// Package textract turns documents into the plain text the parsers read.
// PDFs go through github.com/ledongthuc/pdf, row by row; anything else is
// read as UTF-8 text.
package textract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Source yields a document's text. It matches parser.TextSource.
type Source interface {
	Text(ctx context.Context) (string, error)
}

// ForPath picks a source from the file extension.
func ForPath(path string) Source {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDFFile{Path: path}
	}
	return TextFile{Path: path}
}

// ForBytes picks a source from the content: data starting with the PDF
// magic is read as a PDF, anything else as text.
func ForBytes(data []byte) Source {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return PDFBytes{Data: data}
	}
	return Plain(string(data))
}

// Plain is text that needs no extraction.
type Plain string

func (p Plain) Text(context.Context) (string, error) { return string(p), nil }

// TextFile reads a text file as is.
type TextFile struct {
	Path string
}

func (f TextFile) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("TextFile: %w", err)
	}
	return string(b), nil
}

// PDFFile extracts the text layer of a PDF on disk. A scanned PDF yields
// empty text, not an error.
type PDFFile struct {
	Path string
}

func (f PDFFile) Text(ctx context.Context) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDFFile: pdf library panicked: %v", r)
		}
	}()

	file, r, err := pdf.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("PDFFile: %w", err)
	}
	defer file.Close()

	return pages(ctx, r)
}

// PDFBytes extracts the text layer of an in-memory PDF.
type PDFBytes struct {
	Data []byte
}

func (b PDFBytes) Text(ctx context.Context) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDFBytes: pdf library panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b.Data), int64(len(b.Data)))
	if err != nil {
		return "", fmt.Errorf("PDFBytes: %w", err)
	}
	return pages(ctx, r)
}

// pages joins every page's text with newlines. Rows are preferred since
// they keep a statement line's date and amount together; pages where row
// grouping fails fall back to the plain text stream.
func pages(ctx context.Context, r *pdf.Reader) (string, error) {
	var out []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		if text := pageRows(p); text != "" {
			out = append(out, text)
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}

func pageRows(p pdf.Page) string {
	rows, err := p.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
