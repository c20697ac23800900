// Package app assembles configuration, stores, sinks and the parser
// registry for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dvloznov/expense-extractor/internal/assist"
	"github.com/dvloznov/expense-extractor/internal/config"
	"github.com/dvloznov/expense-extractor/internal/gcs"
	"github.com/dvloznov/expense-extractor/internal/infra/bigquery"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/notionsync"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/dvloznov/expense-extractor/internal/worker"
	"github.com/rs/zerolog"
)

// LoadConfig reads .env, the YAML file (defaults when missing) and the
// environment, then validates the result.
func LoadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Options selects which backends New opens.
type Options struct {
	Ledger    bool // sqlite
	Storage   bool // GCS, needs storage.gcs_bucket
	Warehouse bool // BigQuery, needs project and dataset
	Notion    bool // needs token and database id
}

// App holds the opened backends. Fields for backends that were not
// requested or not configured are nil.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Registry *parser.Registry

	Ledger    *sqlite.DB
	Storage   *gcs.Client
	Warehouse *bigquery.Repository
	Notion    *notionsync.Exporter

	closers []func() error
}

// New opens the requested backends and builds the registry. The mapping
// table is built by Table.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log, err := logger.NewFromConfig(cfg.Log, nil)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log}
	ctx = logger.WithContext(ctx, log)

	if err := a.open(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}

	table, err := a.Table(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var provider assist.Provider = assist.Disabled{}
	if cfg.AIReady() {
		gp, err := assist.NewGeminiProvider(ctx, assist.GeminiConfig{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		provider = gp
	} else if cfg.AI.Enabled {
		log.Warn().Msg("AI enabled but no API key configured; using heuristics only")
	}

	a.Registry = parser.NewRegistry(parser.Deps{
		Table:        table,
		Provider:     provider,
		MaxChars:     cfg.AI.MaxChars,
		RetryChars:   cfg.AI.RetryChars,
		DropIncoming: cfg.SMS.DropIncoming,
	})
	return a, nil
}

func (a *App) open(ctx context.Context, opts Options) error {
	cfg := a.Config

	if opts.Ledger && cfg.Storage.SQLitePath != "" {
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		a.Ledger = db
		a.closers = append(a.closers, db.Close)
	}

	if opts.Storage && cfg.Storage.GCSBucket != "" {
		c, err := gcs.NewClient(ctx)
		if err != nil {
			return err
		}
		a.Storage = c
		a.closers = append(a.closers, c.Close)
	}

	if opts.Warehouse && cfg.Storage.GCPProject != "" && cfg.Storage.BigQueryDataset != "" {
		repo, err := bigquery.NewRepository(ctx, cfg.Storage.GCPProject, cfg.Storage.BigQueryDataset)
		if err != nil {
			return err
		}
		a.Warehouse = repo
		a.closers = append(a.closers, repo.Close)
	}

	if opts.Notion && cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		a.Notion = notionsync.NewExporter(notionsync.NewNotionClient(cfg.Notion.Token), cfg.Notion.DatabaseID)
	}
	return nil
}

// Table layers biller overrides over the defaults: configuration first,
// then the warehouse, then the local store.
func (a *App) Table(ctx context.Context) (*mapping.Table, error) {
	table, err := a.Config.Table()
	if err != nil {
		return nil, err
	}
	if a.Warehouse != nil {
		entries, err := a.Warehouse.BillerMappings(ctx)
		if err != nil {
			return nil, fmt.Errorf("warehouse biller mappings: %w", err)
		}
		if len(entries) > 0 {
			if table, err = table.With(entries...); err != nil {
				return nil, err
			}
		}
	}
	if a.Ledger == nil {
		return table, nil
	}
	return a.Ledger.Table(ctx, table)
}

// Reload rebuilds the registry after biller overrides changed.
func (a *App) Reload(ctx context.Context) error {
	table, err := a.Table(ctx)
	if err != nil {
		return err
	}
	a.Registry.SetTable(table)
	return nil
}

// Handler builds the job handler with a sink for every opened backend.
func (a *App) Handler() *worker.Handler {
	h := worker.New(a.Registry)
	if a.Storage != nil {
		h.Storage = a.Storage
		h.Register(worker.SinkResults, worker.ResultsSink(a.Storage, a.Config.Storage.GCSBucket))
	}
	if a.Ledger != nil {
		h.Register(worker.SinkLedger, worker.LedgerSink(a.Ledger))
	}
	if a.Warehouse != nil {
		h.Register(worker.SinkWarehouse, worker.WarehouseSink(a.Warehouse))
	}
	if a.Notion != nil {
		h.Register(worker.SinkNotion, worker.NotionSink(a.Notion))
	}
	return h
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
