// Package cache provides the Redis-backed lookup result cache. A cache
// failure never fails a lookup: reads degrade to misses and writes to
// no-ops.
package cache

import (
	"context"
	"time"

	"github.com/sells-group/hotelinfo/internal/model"
)

// Stats is a snapshot of cache effectiveness counters. Hits and misses
// are process-local; Entries reflects the backend.
type Stats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// HitRate returns hits/(hits+misses), or 0 before any lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Store caches finished lookup records under their query identity key.
type Store interface {
	// Get returns the cached record for the key, if present and fresh.
	Get(ctx context.Context, key string) (*model.HotelRecord, bool)
	// Put stores the record under key with the given TTL.
	Put(ctx context.Context, key string, rec *model.HotelRecord, ttl time.Duration)
	// Invalidate removes the exact key if present, otherwise every entry
	// whose search name contains pattern (case-insensitive). Returns the
	// number of entries removed.
	Invalidate(ctx context.Context, pattern string) int
	// Stats reports entry count and hit/miss counters.
	Stats(ctx context.Context) Stats
	// Close releases the backend connection.
	Close() error
}
