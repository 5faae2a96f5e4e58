package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/happyscroll/verdict-service/internal/verdict"
)

// keyPrefix namespaces every verdict entry in a shared Redis instance so the
// cache can coexist with other keyspaces on the same database.
const keyPrefix = "happyscroll:verdict:"

// RedisBackend is the shared cache backend for multi-instance deployments.
// It leans on Redis's native key TTL (SETEX) rather than storing an
// expires-at field and checking it at read time — one fewer invariant to
// get wrong.
type RedisBackend struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisBackend parses redisURL and pings it once at construction. If the
// URL is empty or the ping fails, it returns a backend with a nil client:
// every operation then degrades to a silent no-op rather than failing the
// caller's request.
func NewRedisBackend(redisURL string, log zerolog.Logger) *RedisBackend {
	if redisURL == "" {
		log.Warn().Msg("cache: no CACHE_BACKEND_URL configured, redis cache disabled")
		return &RedisBackend{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Error().Err(err).Msg("cache: invalid redis URL, redis cache disabled")
		return &RedisBackend{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("cache: redis ping failed, redis cache disabled")
		return &RedisBackend{log: log}
	}

	log.Info().Msg("cache: connected to redis")
	return &RedisBackend{rdb: rdb, log: log}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Get(ctx context.Context, videoID string) (*verdict.Verdict, bool) {
	if b.rdb == nil {
		return nil, false
	}

	data, err := b.rdb.Get(ctx, keyPrefix+videoID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		b.log.Error().Err(err).Str("videoId", videoID).Msg("cache: redis get failed")
		return nil, false
	}

	var v verdict.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		b.log.Error().Err(err).Str("videoId", videoID).Msg("cache: corrupt redis entry")
		return nil, false
	}
	return &v, true
}

func (b *RedisBackend) Put(ctx context.Context, videoID string, v verdict.Verdict, ttl time.Duration) {
	if b.rdb == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error().Err(err).Str("videoId", videoID).Msg("cache: marshal failed")
		return
	}

	if err := b.rdb.Set(ctx, keyPrefix+videoID, data, ttl).Err(); err != nil {
		b.log.Error().Err(err).Str("videoId", videoID).Msg("cache: redis set failed")
	}
}

func (b *RedisBackend) Invalidate(ctx context.Context, videoID string) {
	if b.rdb == nil {
		return
	}
	if err := b.rdb.Del(ctx, keyPrefix+videoID).Err(); err != nil {
		b.log.Error().Err(err).Str("videoId", videoID).Msg("cache: redis del failed")
	}
}

// Clear scans and deletes every key under keyPrefix. It is an admin
// operation only; the scan cost is acceptable at the interactive
// call rate POST /cache/clear expects.
func (b *RedisBackend) Clear(ctx context.Context) int {
	if b.rdb == nil {
		return 0
	}

	var cursor uint64
	removed := 0
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, keyPrefix+"*", 500).Result()
		if err != nil {
			b.log.Error().Err(err).Msg("cache: redis scan failed during clear")
			break
		}
		if len(keys) > 0 {
			if err := b.rdb.Del(ctx, keys...).Err(); err != nil {
				b.log.Error().Err(err).Msg("cache: redis del failed during clear")
			} else {
				removed += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed
}

// Size reports the approximate number of entries via SCAN rather than
// DBSIZE, since DBSIZE would count unrelated keys sharing the database.
func (b *RedisBackend) Size(ctx context.Context) int64 {
	if b.rdb == nil {
		return 0
	}

	var cursor uint64
	var count int64
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, keyPrefix+"*", 500).Result()
		if err != nil {
			return count
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count
}

// Close releases the underlying Redis connection, if any.
func (b *RedisBackend) Close() error {
	if b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// Ping reports whether the Redis connection is reachable, for readiness
// probes. A backend degraded to nil-client reports itself unreachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if b.rdb == nil {
		return redis.ErrClosed
	}
	return b.rdb.Ping(ctx).Err()
}
