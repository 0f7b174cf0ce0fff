package redisx

import "time"

const (
	// Cached catalog snapshot (JSON blob): catalog:snapshot
	KeyCatalogSnapshot = "catalog:snapshot"

	// Cache order status: order_status:{receipt_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalogSnapshot = 30 * time.Second
	TTLStatusCache     = 5 * time.Minute
	TTLDedup           = 48 * time.Hour
)
