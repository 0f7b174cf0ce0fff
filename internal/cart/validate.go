package cart

import (
	"fmt"

	"github.com/andrasetia/go-sheet-storefront/internal/catalog"
)

// StockStatus reports line items whose ordered quantity exceeds the stock on
// hand in the snapshot.
type StockStatus struct {
	HasIssues bool     `json:"has_issues"`
	Issues    []string `json:"issues,omitempty"`
}

// ValidateStock is pure. Items without a matching catalog row are skipped as
// unverifiable, and a nil or empty snapshot yields no issues: the check fails
// open so an unloaded catalog never blocks the storefront.
func ValidateStock(items []LineItem, snap *catalog.Snapshot) StockStatus {
	if snap == nil || len(snap.Rows) == 0 {
		return StockStatus{}
	}
	var issues []string
	for _, it := range items {
		row, ok := snap.Find(it.Code, it.Name, it.Variant)
		if !ok {
			continue
		}
		if row.Stock < it.Qty {
			issues = append(issues, fmt.Sprintf("%s (%s): insufficient stock, want %d have %d",
				it.Name, it.Code, it.Qty, row.Stock))
		}
	}
	return StockStatus{HasIssues: len(issues) > 0, Issues: issues}
}
