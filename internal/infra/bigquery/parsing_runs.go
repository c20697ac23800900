package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Parsing run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// Parser types recorded on a finished run.
const (
	ParserTypeAI        = "AI"
	ParserTypeHeuristic = "HEURISTIC"
)

// ParsingRunRow audits one parse call made by a job.
type ParsingRunRow struct {
	ParsingRunID string `bigquery:"parsing_run_id"` // REQUIRED
	JobID        string `bigquery:"job_id"`         // NULLABLE
	Source       string `bigquery:"source"`         // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	ParserType bigquery.NullString `bigquery:"parser_type"` // NULLABLE, set when finished
	Outcome    bigquery.NullString `bigquery:"outcome"`     // NULLABLE
	Reason     bigquery.NullString `bigquery:"reason"`      // NULLABLE

	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE

	Status       string `bigquery:"status"`        // REQUIRED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE
}
