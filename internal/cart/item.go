package cart

import "fmt"

// LineItem is one product/variant plus an ordered quantity.
type LineItem struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}

// Key identifies a line item by its product fields; selecting the same key
// again merges quantities instead of duplicating the entry.
func (li LineItem) Key() string {
	return li.Code + " | " + li.Name + " | " + li.Variant
}

// FormatCents renders a non-negative amount of cents as "12.34".
func FormatCents(c int) string {
	if c < 0 {
		c = 0
	}
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
