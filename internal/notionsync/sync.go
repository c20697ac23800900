// Package notionsync exports extracted transactions to a Notion database.
package notionsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/jomei/notionapi"
)

// BatchSize is the page size used when reading the database and the number
// of transactions logged per progress line.
const BatchSize = 100

// Report counts what an export did.
type Report struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Deleted int `json:"deleted"`
}

// Exporter writes transactions into one Notion database. Pages carry a
// Transaction Key so re-exports skip what is already there.
type Exporter struct {
	Service    NotionService
	DatabaseID string
	DryRun     bool
	// Prune archives pages whose key is not in the exported set.
	Prune bool
}

func NewExporter(service NotionService, databaseID string) *Exporter {
	return &Exporter{Service: service, DatabaseID: databaseID}
}

// Export creates a page for every transaction not yet in the database.
// Individual page failures are counted and logged; the export only fails
// when the database cannot be read or every create failed.
func (e *Exporter) Export(ctx context.Context, txs []domain.Transaction) (Report, error) {
	log := logger.FromContext(ctx)
	var report Report

	if e.DatabaseID == "" {
		return report, errors.New("Export: notion database id is empty")
	}

	pages, err := queryAllNotionPages(ctx, e.Service, e.DatabaseID)
	if err != nil {
		return report, fmt.Errorf("Export: %w", err)
	}
	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		if key := extractKey(page); key != "" {
			existing[key] = true
		}
	}

	log.Info().
		Int("transactions", len(txs)).
		Int("notion_pages", len(pages)).
		Bool("dry_run", e.DryRun).
		Msg("Starting Notion export")

	wanted := make(map[string]bool, len(txs))
	for _, tx := range txs {
		wanted[TransactionKey(tx)] = true
	}

	created := make(map[string]bool, len(txs))
	var lastErr error
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 && i%BatchSize == 0 {
			log.Info().Int("processed", i).Msg("Notion export progress")
		}

		key := TransactionKey(tx)
		if existing[key] || created[key] {
			report.Skipped++
			continue
		}
		created[key] = true

		if e.DryRun {
			log.Info().Str("key", key).Str("description", tx.Description).Msg("[DRY RUN] Would create Notion page")
			report.Created++
			continue
		}
		if _, err := e.Service.CreatePage(ctx, e.DatabaseID, TransactionToNotionProperties(tx)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to create Notion page")
			report.Failed++
			lastErr = err
			continue
		}
		report.Created++
	}

	if e.Prune {
		for _, page := range pages {
			if wanted[extractKey(page)] {
				continue
			}
			if e.DryRun {
				report.Deleted++
				continue
			}
			if err := e.Service.DeletePage(ctx, string(page.ID)); err != nil {
				log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to delete stale Notion page")
				continue
			}
			report.Deleted++
		}
	}

	log.Info().
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("deleted", report.Deleted).
		Msg("Notion export completed")

	if report.Failed > 0 && report.Created == 0 {
		return report, fmt.Errorf("Export: all %d creates failed: %w", report.Failed, lastErr)
	}
	return report, nil
}

// queryAllNotionPages follows the cursor until the database is exhausted.
func queryAllNotionPages(ctx context.Context, service NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: BatchSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := service.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}
