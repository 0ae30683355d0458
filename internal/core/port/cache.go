package port

import (
	"context"
	"time"
)

// Cache exposes the key-value operations the read-through layer relies on.
// Get returns repository.ErrNotFound on a miss so callers can distinguish
// absence from store failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
