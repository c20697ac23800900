package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/parser"
)

var (
	// ErrQueueClosed is returned when publishing to or starting a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
	// ErrJobNotFound is returned by stores for unknown job IDs.
	ErrJobNotFound = errors.New("job not found")
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeParseText parses inline text or a gs:// object with one source parser.
	JobTypeParseText JobType = "parse_text"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ParseTextJob asks a worker to run one parse call. Exactly one of Text and
// GCSURI is set.
type ParseTextJob struct {
	JobID  string        `json:"job_id"`
	Source domain.Source `json:"source"`
	Text   string        `json:"text,omitempty"`
	GCSURI string        `json:"gcs_uri,omitempty"`

	// Sinks names where results are written after a successful parse:
	// "sqlite", "bigquery", "notion", "gcs".
	Sinks []string `json:"sinks,omitempty"`

	ParsingRunID string `json:"parsing_run_id,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`

	// Result is set once the parse call finished, whatever its outcome.
	Result *parser.Result `json:"result,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ParseTextJob) GetID() string        { return j.JobID }
func (j *ParseTextJob) GetType() JobType     { return JobTypeParseText }
func (j *ParseTextJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs.
type Publisher interface {
	PublishParseText(ctx context.Context, job *ParseTextJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error is retried up to the job's
// MaxRetries unless it is wrapped with Permanent.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseTextJob) error
	GetJob(ctx context.Context, jobID string) (*ParseTextJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseTextJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Source domain.Source
	Status JobStatus
	Limit  int
	Offset int
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. a malformed job.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
