package orders

import "time"

// Order is a submitted storefront order, keyed by its receipt id.
type Order struct {
	ReceiptID     string    `json:"receipt_id"`
	SessionRef    string    `json:"session_ref"`
	Status        Status    `json:"status"` // see status.go
	SubtotalCents int       `json:"subtotal_cents"`
	DiscountCents int       `json:"discount_cents"`
	TotalCents    int       `json:"total_cents"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ItemLine is one ordered product as persisted and as carried in events.
type ItemLine struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}
