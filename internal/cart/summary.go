package cart

import (
	"fmt"
	"strings"
)

// ComposeSummary renders the human-readable text block for a completed order:
// receipt id, one line per item in insertion order, a discount line only when
// a discount applied, the total, and the checkout session reference.
func ComposeSummary(res *OrderResult) string {
	var b strings.Builder
	if res.ReceiptID != "" {
		fmt.Fprintf(&b, "Receipt: %s\n", res.ReceiptID)
	}
	for _, it := range res.Items {
		if it.Variant != "" {
			fmt.Fprintf(&b, "%s %s (%s) [%s] x%d\n", it.Code, it.Name, it.Variant, FormatCents(it.PriceCents), it.Qty)
		} else {
			fmt.Fprintf(&b, "%s %s [%s] x%d\n", it.Code, it.Name, FormatCents(it.PriceCents), it.Qty)
		}
	}
	if res.Totals.DiscountCents > 0 {
		fmt.Fprintf(&b, "Discount: -%s\n", FormatCents(res.Totals.DiscountCents))
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatCents(res.Totals.TotalCents))
	fmt.Fprintf(&b, "Session: %s", res.SessionRef)
	return b.String()
}
