package cart

import "math"

type DiscountType string

const (
	DiscountPercent DiscountType = "%"
	DiscountFixed   DiscountType = "$"
)

// Discount reduces an order total once; a nil discount equals a zero one.
// Amount is a percentage of the subtotal for "%" and currency units for "$".
type Discount struct {
	Type   DiscountType `json:"type"`
	Amount float64      `json:"amount"`
}

// Totals is the computed pricing for a set of line items, in cents.
type Totals struct {
	SubtotalCents int `json:"subtotal_cents"`
	DiscountCents int `json:"discount_cents"`
	TotalCents    int `json:"total_cents"`
}

// ComputeTotals is pure and order-independent. The discount never exceeds the
// subtotal and the total never goes negative.
func ComputeTotals(items []LineItem, d *Discount) Totals {
	var subtotal int
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += it.PriceCents * it.Qty
	}

	var discount int
	if d != nil && d.Amount > 0 {
		switch d.Type {
		case DiscountPercent:
			discount = int(math.Round(float64(subtotal) * d.Amount / 100))
		case DiscountFixed:
			discount = int(math.Round(d.Amount * 100))
		}
		if discount > subtotal {
			discount = subtotal
		}
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return Totals{SubtotalCents: subtotal, DiscountCents: discount, TotalCents: total}
}
