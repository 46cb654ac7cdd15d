package cache

import (
	"context"
	"time"
)

// DefaultFreshness is the single freshness window applied to every cached
// entity. There is no per-record override.
const DefaultFreshness = 30 * time.Minute

// Store is the key-value slot backing the user profile cache. Implementations
// must treat a missing key as (nil, false, nil) rather than an error.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
