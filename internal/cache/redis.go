package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
)

// keyPrefix namespaces lookup records in Redis.
const keyPrefix = "hotel:lookup:"

// RedisStore implements Store on go-redis. Backend errors are logged and
// absorbed: Get reports a miss, Put drops the write.
type RedisStore struct {
	rdb    *redis.Client
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisStore connects to the Redis at url (redis://host:port/db).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	return &RedisStore{rdb: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Get(ctx context.Context, key string) (*model.HotelRecord, bool) {
	v, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		s.misses.Add(1)
		return nil, false
	}
	if err != nil {
		// Unreachable backend counts as a miss; the lookup proceeds.
		s.misses.Add(1)
		zap.L().Warn("cache: get failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}

	var rec model.HotelRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		s.misses.Add(1)
		zap.L().Warn("cache: corrupt entry dropped",
			zap.String("key", key),
			zap.Error(err),
		)
		s.rdb.Del(ctx, keyPrefix+key)
		return nil, false
	}

	s.hits.Add(1)
	return &rec, true
}

func (s *RedisStore) Put(ctx context.Context, key string, rec *model.HotelRecord, ttl time.Duration) {
	if rec == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		zap.L().Warn("cache: marshal record", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, b, ttl).Err(); err != nil {
		zap.L().Warn("cache: put failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *RedisStore) Invalidate(ctx context.Context, pattern string) int {
	if pattern == "" {
		return 0
	}

	// Exact identity key first.
	n, err := s.rdb.Del(ctx, keyPrefix+pattern).Result()
	if err == nil && n > 0 {
		return int(n)
	}

	// Fall back to a substring match on the stored search name.
	needle := strings.ToLower(pattern)
	removed := 0
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		v, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec model.HotelRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(rec.SearchName), needle) {
			if s.rdb.Del(ctx, key).Err() == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		zap.L().Warn("cache: invalidate scan failed", zap.Error(err))
	}
	return removed
}

func (s *RedisStore) Stats(ctx context.Context) Stats {
	stats := Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", 500).Result()
		if err != nil {
			zap.L().Warn("cache: stats scan failed", zap.Error(err))
			break
		}
		stats.Entries += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return stats
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Disabled is a Store that caches nothing. Used when the cache is
// switched off or unavailable at startup.
type Disabled struct {
	misses atomic.Int64
}

var _ Store = (*Disabled)(nil)

func (d *Disabled) Get(context.Context, string) (*model.HotelRecord, bool) {
	d.misses.Add(1)
	return nil, false
}

func (d *Disabled) Put(context.Context, string, *model.HotelRecord, time.Duration) {}

func (d *Disabled) Invalidate(context.Context, string) int { return 0 }

func (d *Disabled) Stats(context.Context) Stats {
	return Stats{Misses: d.misses.Load()}
}

func (d *Disabled) Close() error { return nil }
