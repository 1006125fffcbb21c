package cache

import (
	"context"
	"time"
)

const (
	// deliveryPrefix is the Redis key prefix for seen delivery ids.
	deliveryPrefix = "identity:delivery:"
	// deliveryTTL bounds how long redeliveries are remembered. Providers
	// retry on the order of hours, not days.
	deliveryTTL = 24 * time.Hour
)

// deliveryKey builds the Redis key for a delivery id.
func deliveryKey(deliveryID string) string {
	return deliveryPrefix + deliveryID
}

// MarkDelivery records a delivery id and reports whether this is the first
// time it was seen. Used to short-circuit provider redeliveries; the
// reconciler's upsert semantics remain correct without it, so callers treat
// Redis failures as "first time".
func (c *Cache) MarkDelivery(ctx context.Context, deliveryID string) (bool, error) {
	return c.client.SetNX(ctx, deliveryKey(deliveryID), "1", deliveryTTL).Result()
}
