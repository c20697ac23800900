package worker

import (
	"context"
	"fmt"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/gcs"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/dvloznov/expense-extractor/internal/notionsync"
	"github.com/dvloznov/expense-extractor/internal/parser"
)

// Sink names accepted in ParseTextJob.Sinks.
const (
	SinkLedger    = "sqlite"
	SinkWarehouse = "bigquery"
	SinkNotion    = "notion"
	SinkResults   = "gcs"
)

// Sink receives the result of a finished parse.
type Sink interface {
	Write(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error

func (f SinkFunc) Write(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error {
	return f(ctx, job, res)
}

// Ledger is implemented by the sqlite store.
type Ledger interface {
	SaveResult(ctx context.Context, jobID string, res parser.Result) (int, error)
}

// Warehouse is implemented by the BigQuery repository.
type Warehouse interface {
	SaveResult(ctx context.Context, jobID string, source domain.Source, res parser.Result) (string, error)
}

// Exporter is implemented by notionsync.Exporter.
type Exporter interface {
	Export(ctx context.Context, txs []domain.Transaction) (notionsync.Report, error)
}

func LedgerSink(l Ledger) Sink {
	return SinkFunc(func(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error {
		n, err := l.SaveResult(ctx, job.JobID, res)
		if err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		log := logger.FromContext(ctx)
		log.Debug().Int("rows", n).Msg("saved to ledger")
		return nil
	})
}

// WarehouseSink records a parsing run for every result, including empty
// ones, and stores the run ID on the job.
func WarehouseSink(w Warehouse) Sink {
	return SinkFunc(func(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error {
		runID, err := w.SaveResult(ctx, job.JobID, job.Source, res)
		if runID != "" {
			job.ParsingRunID = runID
		}
		if err != nil {
			return fmt.Errorf("warehouse: %w", err)
		}
		return nil
	})
}

func NotionSink(e Exporter) Sink {
	return SinkFunc(func(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error {
		if len(res.Transactions) == 0 {
			return nil
		}
		report, err := e.Export(ctx, res.Transactions)
		if err != nil {
			return fmt.Errorf("notion: %w", err)
		}
		log := logger.FromContext(ctx)
		log.Debug().Int("created", report.Created).Int("skipped", report.Skipped).Msg("exported to notion")
		return nil
	})
}

// ResultsSink uploads the finished job, result included, as JSON to
// bucket/results/<job id>.json.
func ResultsSink(s gcs.Storage, bucket string) Sink {
	return SinkFunc(func(ctx context.Context, job *jobs.ParseTextJob, res parser.Result) error {
		snapshot := *job
		snapshot.Result = &res
		if _, err := s.UploadJSON(ctx, bucket, gcs.ResultObject(job.JobID), &snapshot); err != nil {
			return fmt.Errorf("results: %w", err)
		}
		return nil
	})
}
