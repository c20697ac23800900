package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"google.golang.org/api/iterator"
)

const billerMappingsTable = "biller_mappings"

// ListBillerMappingsWithClient loads every override, ordered by biller.
func ListBillerMappingsWithClient(ctx context.Context, client *bigquery.Client, dataset string) ([]mapping.Entry, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT biller, category_name, updated_ts
		FROM %s.%s
		ORDER BY biller
	`, dataset, billerMappingsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBillerMappings: query read: %w", err)
	}

	var entries []mapping.Entry
	for {
		var r BillerMappingRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBillerMappings: iter next: %w", err)
		}
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// UpsertBillerMappingWithClient inserts or replaces the category of one biller.
func UpsertBillerMappingWithClient(ctx context.Context, client *bigquery.Client, dataset string, e mapping.Entry) error {
	err := runDML(ctx, client, fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @biller AS biller, @category_name AS category_name, @updated_ts AS updated_ts) s
		ON t.biller = s.biller
		WHEN MATCHED THEN
		  UPDATE SET category_name = s.category_name, updated_ts = s.updated_ts
		WHEN NOT MATCHED THEN
		  INSERT (biller, category_name, updated_ts)
		  VALUES (s.biller, s.category_name, s.updated_ts)
	`, dataset, billerMappingsTable), []bigquery.QueryParameter{
		{Name: "biller", Value: strings.ToUpper(strings.TrimSpace(e.Biller))},
		{Name: "category_name", Value: e.Category},
		{Name: "updated_ts", Value: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("UpsertBillerMapping: %w", err)
	}
	return nil
}
