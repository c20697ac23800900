package bigquery

import (
	"time"

	"github.com/dvloznov/expense-extractor/internal/mapping"
)

// BillerMappingRow is one user-maintained biller override in
// <dataset>.biller_mappings.
type BillerMappingRow struct {
	Biller       string    `bigquery:"biller"`        // REQUIRED, upper-cased
	CategoryName string    `bigquery:"category_name"` // REQUIRED
	UpdatedTS    time.Time `bigquery:"updated_ts"`    // REQUIRED
}

func (r *BillerMappingRow) Entry() mapping.Entry {
	return mapping.Entry{Biller: r.Biller, Category: r.CategoryName}
}
