package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the expiring key/counter store used for login throttling
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Incr increments the counter at key and returns the new value.
	// The ttl starts when the counter is created and is not extended by later increments.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// Key joins parts into a namespaced cache key
func Key(parts ...string) string {
	return "notes:" + strings.Join(parts, ":")
}
