package storage

import "context"

// Config - ...
type Config struct {
	DSN string
}

// Deduplicator tracks queue message IDs that were already handled. Delivery
// is at-least-once, so handlers consult it to turn a reprocessed duplicate
// into a no-op.
type Deduplicator interface {
	// Seen records messageID and reports whether it had been recorded before.
	Seen(ctx context.Context, messageID string) (bool, error)
}
