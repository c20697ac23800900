package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/google/uuid"
)

const (
	parsingRunsTable = "parsing_runs"
	maxErrorMessage  = 2000
)

// runDML runs a parameterised statement and waits for it to finish.
func runDML(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// StartParsingRunWithClient inserts a RUNNING row into <dataset>.parsing_runs
// and returns the generated parsing_run_id.
func StartParsingRunWithClient(ctx context.Context, client *bigquery.Client, dataset, jobID string, source domain.Source) (string, error) {
	parsingRunID := uuid.NewString()

	err := runDML(ctx, client, fmt.Sprintf(`
		INSERT %s.%s (
			parsing_run_id,
			job_id,
			source,
			started_ts,
			status
		)
		VALUES (
			@parsing_run_id,
			@job_id,
			@source,
			@started_ts,
			@status
		)
	`, dataset, parsingRunsTable), []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: parsingRunID},
		{Name: "job_id", Value: jobID},
		{Name: "source", Value: string(source)},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: RunStatusRunning},
	})
	if err != nil {
		return "", fmt.Errorf("StartParsingRun: %w", err)
	}
	return parsingRunID, nil
}

// FinishParsingRunWithClient records the outcome of a parse call and marks
// the run SUCCESS. A run that found nothing still succeeded.
func FinishParsingRunWithClient(ctx context.Context, client *bigquery.Client, dataset, parsingRunID string, res parser.Result) error {
	err := runDML(ctx, client, fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    parser_type = @parser_type,
		    outcome = @outcome,
		    reason = @reason,
		    transaction_count = @transaction_count,
		    error_message = ""
		WHERE parsing_run_id = @parsing_run_id
	`, dataset, parsingRunsTable), []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "parser_type", Value: ParserType(res)},
		{Name: "outcome", Value: res.Outcome.String()},
		{Name: "reason", Value: res.Reason},
		{Name: "transaction_count", Value: int64(len(res.Transactions))},
		{Name: "parsing_run_id", Value: parsingRunID},
	})
	if err != nil {
		return fmt.Errorf("FinishParsingRun: %w", err)
	}
	return nil
}

// MarkParsingRunFailedWithClient sets status=FAILED, finished_ts and
// error_message. Failures here are logged, not returned, so they never mask
// the error that caused them.
func MarkParsingRunFailedWithClient(ctx context.Context, client *bigquery.Client, dataset, parsingRunID string, parseErr error) {
	log := logger.FromContext(ctx)

	err := runDML(ctx, client, fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE parsing_run_id = @parsing_run_id
	`, dataset, parsingRunsTable), []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: ErrorMessage(parseErr)},
		{Name: "parsing_run_id", Value: parsingRunID},
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed")
	}
}

// ParserType names which pass produced the result.
func ParserType(res parser.Result) string {
	if res.ProducedByAI {
		return ParserTypeAI
	}
	return ParserTypeHeuristic
}

// ErrorMessage flattens err for the error_message column.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	return msg
}
