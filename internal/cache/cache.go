// Package cache holds the result-cache contract for the analytics
// pipeline: deterministic key derivation, a TTL policy proportional to
// range size, and pluggable backends.
package cache

import (
	"context"
	"fmt"
	"time"
)

// maxTTL caps entry lifetime at one day regardless of range size.
const maxTTL = 24 * time.Hour

// Store is a process-external key/value cache. Reads and writes are
// single-key operations; the store's own atomicity is the only
// coordination. There is deliberately no single-flight protection:
// concurrent misses on one key each query the warehouse and overwrite
// the same deterministic value.
type Store interface {
	// Get returns the cached payload and whether the key was present.
	// Backend failures are reported as an error, which callers treat as
	// a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the payload under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives the cache key for a timeseries request. Only the
// requested interval and range length participate; endpoints with other
// parameters use their own namespace.
func Key(interval string, days int) string {
	return fmt.Sprintf("timeseries:%s:%d", interval, days)
}

// TTL scales entry lifetime with range size: larger ranges change less
// per unit time, so they may be cached longer, capped at one day.
func TTL(days int) time.Duration {
	ttl := time.Duration(days) * time.Minute
	if ttl > maxTTL {
		return maxTTL
	}
	return ttl
}
