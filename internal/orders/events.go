package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	EventOrderFailed    = "OrderFailed"
	EventOrderPaid      = "OrderPaid"
	EventOrderCompleted = "OrderCompleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // receipt id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type OrderSubmittedPayload struct {
	ReceiptID     string     `json:"receipt_id"`
	SessionRef    string     `json:"session_ref"`
	Items         []ItemLine `json:"items"`
	SubtotalCents int        `json:"subtotal_cents"`
	DiscountCents int        `json:"discount_cents"`
	TotalCents    int        `json:"total_cents"`
}

type OrderFailedPayload struct {
	SessionID string `json:"session_id"` // storefront session, not checkout
	Reason    string `json:"reason"`
}

type OrderStatusPayload struct {
	ReceiptID string `json:"receipt_id"`
	Status    Status `json:"status"`
}
