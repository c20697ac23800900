package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/jobs/inmemory"
	"github.com/dvloznov/expense-extractor/internal/logger"
)

// jobSpec is one input line: {"source":"bank","gcs_uri":"gs://...","sinks":["sqlite"]}
type jobSpec struct {
	Source string   `json:"source"`
	Text   string   `json:"text"`
	GCSURI string   `json:"gcs_uri"`
	Sinks  []string `json:"sinks"`
}

// The worker runs a batch of parse jobs read as JSON lines, writes each
// finished job as a JSON line to stdout and exits non-zero if any failed.
func main() {
	var (
		configPath = flag.String("config", "", "path to expense-extractor.yaml")
		input      = flag.String("input", "-", "JSON-lines job file, - for stdin")
		sinks      = flag.String("sinks", "", "comma-separated sinks applied to jobs that name none")
	)
	flag.Parse()

	boot := logger.New()
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, app.Options{Ledger: true, Storage: true, Warehouse: true, Notion: true})
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer a.Close()
	log := a.Log
	ctx = logger.WithContext(ctx, log)

	specs, err := readSpecs(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read jobs")
	}

	handler := a.Handler()
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(cfg.Server.QueueSize, store,
		inmemory.WithWorkers(cfg.Server.Workers),
		inmemory.WithMaxRetries(cfg.Server.MaxRetries),
		inmemory.WithLogger(log),
	)
	if err := queue.Start(ctx, handler.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("jobs", len(specs)).Strs("sinks", handler.SinkNames()).Msg("Worker started")

	var ids []string
	for i, spec := range specs {
		source, err := domain.ParseSource(spec.Source)
		if err != nil {
			log.Error().Err(err).Int("line", i+1).Msg("Skipping job")
			continue
		}
		job := &jobs.ParseTextJob{Source: source, Text: spec.Text, GCSURI: spec.GCSURI, Sinks: spec.Sinks}
		if len(job.Sinks) == 0 && *sinks != "" {
			job.Sinks = strings.Split(*sinks, ",")
		}
		if err := handler.Validate(job); err != nil {
			log.Error().Err(err).Int("line", i+1).Msg("Skipping job")
			continue
		}
		if err := queue.PublishParseText(ctx, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to enqueue job")
		}
		ids = append(ids, job.JobID)
	}

	finished, err := waitAll(ctx, store, ids)
	if stopErr := queue.Close(); stopErr != nil {
		log.Error().Err(stopErr).Msg("Failed to close job queue")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Interrupted before all jobs finished")
	}

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, job := range finished {
		if job.Status == jobs.JobStatusFailed {
			failed++
		}
		if err := enc.Encode(job); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output")
		}
	}

	log.Info().Int("jobs", len(finished)).Int("failed", failed).Msg("Worker finished")
	if failed > 0 {
		os.Exit(1)
	}
}

func readSpecs(path string) ([]jobSpec, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var specs []jobSpec
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8<<20)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var s jobSpec
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		specs = append(specs, s)
	}
	return specs, sc.Err()
}

// waitAll polls the store until every job is completed or failed.
func waitAll(ctx context.Context, store jobs.JobStore, ids []string) ([]*jobs.ParseTextJob, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		out := make([]*jobs.ParseTextJob, 0, len(ids))
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil {
				return nil, err
			}
			if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
				break
			}
			out = append(out, job)
		}
		if len(out) == len(ids) {
			return out, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
