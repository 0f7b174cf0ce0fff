package catalog

import (
	"context"
	"encoding/json"

	"github.com/andrasetia/go-sheet-storefront/internal/redisx"
)

// Gateway is the stock side of the storefront backend.
type Gateway interface {
	Fetch(ctx context.Context) (*Snapshot, error)
	DecrementStock(ctx context.Context, code string, qty int) error
}

// Cache keeps a short-lived copy of the snapshot in redis so repeated
// catalog reads (every focus of the search box) do not hammer the sheet
// backend. Fetch stays fresh and writes through; Cached is read-through.
type Cache struct {
	Gateway Gateway
	Store   redisx.Strings
}

// Cached returns the cached snapshot, falling back to a fresh fetch on miss.
func (c *Cache) Cached(ctx context.Context) (*Snapshot, error) {
	if s, err := c.Store.GetString(ctx, redisx.KeyCatalogSnapshot); err == nil && s != "" {
		var snap Snapshot
		if json.Unmarshal([]byte(s), &snap) == nil {
			return &snap, nil
		}
	}
	return c.Fetch(ctx)
}

// Fetch always hits the backend and refreshes the cached copy.
func (c *Cache) Fetch(ctx context.Context) (*Snapshot, error) {
	snap, err := c.Gateway.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(snap); err == nil {
		// best effort, the backend stays the source of truth
		_ = c.Store.SetString(ctx, redisx.KeyCatalogSnapshot, string(b), redisx.TTLCatalogSnapshot)
	}
	return snap, nil
}

func (c *Cache) DecrementStock(ctx context.Context, code string, qty int) error {
	return c.Gateway.DecrementStock(ctx, code, qty)
}
