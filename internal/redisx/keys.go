package redisx

import "time"

const (
	// Receipt of a committed order: order_receipt:{order_id} -> JSON orders.Receipt
	KeyOrderReceipt = "order_receipt:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Stock is never cached: the database row is the only source of truth for availability.
var (
	TTLReceipt = 10 * time.Minute
	TTLDedup   = 48 * time.Hour
)
