// Package parser orchestrates the extraction engine per source kind. Each
// parser is a stateless service object built from injected dependencies and
// runs every call through the same explicit state machine.
package parser

import (
	"context"

	"github.com/dvloznov/expense-extractor/internal/assist"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
)

// Parser turns one source kind's text into a Result.
type Parser interface {
	Source() domain.Source
	Parse(ctx context.Context, text string, opts ...Option) (Result, error)
	ParseDocument(ctx context.Context, src TextSource, opts ...Option) (Result, error)
}

// Deps are the collaborators every parser is built from. Zero values are
// usable: nil Table means the default table, nil Dates the wall clock and
// nil Provider disables the AI pass.
type Deps struct {
	Table        *mapping.Table
	Dates        *dates.Recognizer
	Provider     assist.Provider
	MaxChars     int
	RetryChars   int
	DropIncoming bool
}

func (d Deps) table() *mapping.Table {
	if d.Table != nil {
		return d.Table
	}
	return mapping.Default()
}

func (d Deps) dates() *dates.Recognizer {
	if d.Dates != nil {
		return d.Dates
	}
	return dates.New(nil)
}

// Option tunes a single call.
type Option func(*callOptions)

type callOptions struct {
	status *Status
}

// WithStatus publishes progress messages to s for the duration of the call.
func WithStatus(s *Status) Option {
	return func(o *callOptions) { o.status = s }
}

// base implements the Parser methods on top of a Machine.
type base struct {
	machine Machine
}

func (b *base) Source() domain.Source { return b.machine.Source }

func (b *base) Parse(ctx context.Context, text string, opts ...Option) (Result, error) {
	return b.ParseDocument(ctx, Text(text), opts...)
}

func (b *base) ParseDocument(ctx context.Context, src TextSource, opts ...Option) (Result, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return b.machine.Run(ctx, src, o.status)
}
