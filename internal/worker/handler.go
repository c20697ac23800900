// Package worker turns queued parse jobs into parser calls and fans the
// results out to the configured sinks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dvloznov/expense-extractor/internal/gcs"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/dvloznov/expense-extractor/internal/textract"
)

// Handler processes ParseTextJobs. Bad input (unknown source or sink,
// malformed URI, missing text) fails permanently; storage and sink errors
// are returned as-is so the queue retries them.
type Handler struct {
	Registry *parser.Registry
	// Storage fetches gs:// inputs. Without it such jobs fail permanently.
	Storage gcs.Storage
	Sinks   map[string]Sink
}

func New(registry *parser.Registry) *Handler {
	return &Handler{Registry: registry, Sinks: map[string]Sink{}}
}

// Register makes a sink selectable by name.
func (h *Handler) Register(name string, s Sink) *Handler {
	h.Sinks[name] = s
	return h
}

// SinkNames lists the registered sinks, sorted.
func (h *Handler) SinkNames() []string {
	names := make([]string, 0, len(h.Sinks))
	for n := range h.Sinks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate reports problems that make job impossible to process.
func (h *Handler) Validate(job *jobs.ParseTextJob) error {
	if _, err := h.Registry.Get(job.Source); err != nil {
		return err
	}
	switch {
	case job.Text == "" && job.GCSURI == "":
		return errors.New("job needs text or gcs_uri")
	case job.Text != "" && job.GCSURI != "":
		return errors.New("job takes text or gcs_uri, not both")
	case job.GCSURI != "":
		if _, _, err := gcs.ParseURI(job.GCSURI); err != nil {
			return err
		}
		if h.Storage == nil {
			return errors.New("gcs inputs are not configured")
		}
	}
	for _, name := range job.Sinks {
		if _, ok := h.Sinks[name]; !ok {
			return fmt.Errorf("unknown sink %q", name)
		}
	}
	return nil
}

// Handle is a jobs.JobHandler.
func (h *Handler) Handle(ctx context.Context, j jobs.Job) error {
	job, ok := j.(*jobs.ParseTextJob)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected job type: %T", j))
	}
	if err := h.Validate(job); err != nil {
		return jobs.Permanent(fmt.Errorf("Handle: %w", err))
	}

	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"job_id": job.JobID,
		"source": job.Source,
	})
	ctx = logger.WithContext(ctx, log)

	src, err := h.textSource(ctx, job)
	if err != nil {
		return err
	}

	res, err := h.Registry.ParseDocument(ctx, job.Source, src)
	if err != nil {
		return err
	}
	job.Result = &res

	log.Info().
		Stringer("outcome", res.Outcome).
		Int("transactions", len(res.Transactions)).
		Bool("ai", res.ProducedByAI).
		Msg("Parse job finished")

	for _, name := range job.Sinks {
		if err := h.Sinks[name].Write(ctx, job, res); err != nil {
			log.Error().Err(err).Str("sink", name).Msg("Sink write failed")
			return fmt.Errorf("Handle: sink %s: %w", name, err)
		}
	}
	return nil
}

// textSource fetches GCS objects up front so a storage outage is a
// retryable error rather than an ExtractionFailed result.
func (h *Handler) textSource(ctx context.Context, job *jobs.ParseTextJob) (parser.TextSource, error) {
	if job.GCSURI == "" {
		return parser.Text(job.Text), nil
	}
	data, err := h.Storage.Fetch(ctx, job.GCSURI)
	if err != nil {
		return nil, fmt.Errorf("Handle: fetch %s: %w", job.GCSURI, err)
	}
	return textract.ForBytes(data), nil
}
