package parser

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/mapping"
)

// Registry holds one parser per source kind, all built from the same Deps.
// SetTable swaps the mapping table for every later call; calls already
// running finish with the table they started with.
type Registry struct {
	mu      sync.RWMutex
	deps    Deps
	parsers map[domain.Source]Parser
}

func NewRegistry(d Deps) *Registry {
	r := &Registry{}
	r.build(d)
	return r
}

func (r *Registry) build(d Deps) {
	d.Table = d.table()
	d.Dates = d.dates()
	r.deps = d
	r.parsers = map[domain.Source]Parser{
		domain.SourceSMS:        NewSMSParser(d),
		domain.SourceBank:       NewBankParser(d),
		domain.SourceCreditCard: NewCreditCardParser(d),
		domain.SourceBill:       NewBillParser(d),
	}
}

// Get returns the parser for source.
func (r *Registry) Get(source domain.Source) (Parser, error) {
	r.mu.RLock()
	p, ok := r.parsers[source]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("Get: no parser for source %q", source)
	}
	return p, nil
}

// Parse runs the source's parser on literal text.
func (r *Registry) Parse(ctx context.Context, source domain.Source, text string, opts ...Option) (Result, error) {
	p, err := r.Get(source)
	if err != nil {
		return Result{}, err
	}
	return p.Parse(ctx, text, opts...)
}

// ParseDocument runs the source's parser on a text source.
func (r *Registry) ParseDocument(ctx context.Context, source domain.Source, src TextSource, opts ...Option) (Result, error) {
	p, err := r.Get(source)
	if err != nil {
		return Result{}, err
	}
	return p.ParseDocument(ctx, src, opts...)
}

// Table is the mapping table the parsers categorize against.
func (r *Registry) Table() *mapping.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deps.Table
}

// AIEnabled reports whether statement parsers will try the AI pass.
func (r *Registry) AIEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deps.Provider != nil && r.deps.Provider.Available()
}

// SetTable rebuilds the parsers to categorize against t.
func (r *Registry) SetTable(t *mapping.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.deps
	d.Table = t
	r.build(d)
}
