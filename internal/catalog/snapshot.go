package catalog

import (
	"strconv"
	"strings"
	"time"
)

// Row is one product line from the sheet, parsed into named fields.
// Column order in the sheet: code, name, variant, price, stock.
type Row struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	PriceCents int    `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// Snapshot is the catalog as last fetched. Callers treat it as read-only;
// a stale snapshot is expected and is what stock validation detects.
type Snapshot struct {
	Rows      []Row     `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ParseValues builds a snapshot from raw sheet values. The first row is the
// header and is skipped. Unparseable price/stock cells degrade to 0.
func ParseValues(values [][]string) *Snapshot {
	snap := &Snapshot{FetchedAt: time.Now().UTC()}
	for i, v := range values {
		if i == 0 {
			continue
		}
		snap.Rows = append(snap.Rows, Row{
			Code:       cell(v, 0),
			Name:       cell(v, 1),
			Variant:    cell(v, 2),
			PriceCents: parsePriceCents(cell(v, 3)),
			Stock:      parseStock(cell(v, 4)),
		})
	}
	return snap
}

// Find matches a row by code+name; the variant narrows the match only when
// the caller supplies one.
func (s *Snapshot) Find(code, name, variant string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Code != code || r.Name != name {
			continue
		}
		if variant != "" && r.Variant != variant {
			continue
		}
		return r, true
	}
	return Row{}, false
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parsePriceCents(s string) int {
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f*100 + 0.5)
}

func parseStock(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
