package ports

import (
	"context"
	"time"
)

// Cache is a small KV store for best-effort bookkeeping, such as remembering
// recently spent search queries.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
