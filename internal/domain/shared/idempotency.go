package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivery IDs (webhook deliveries, provider
// notifications) so a replayed delivery is acknowledged without reprocessing.
type IdempotencyStore interface {
	// MarkProcessed marks a delivery as processed with a TTL.
	// Returns true if the delivery was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error)

	// Forget removes a mark so a delivery whose processing failed can be retried.
	Forget(ctx context.Context, deliveryID string) error

	// IsProcessed checks if a delivery has already been processed
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a delivery ID is remembered. Shopify retries failed
	// deliveries for up to 48 hours.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     72 * time.Hour,
		Enabled: true,
	}
}
