package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// keyPrefix namespaces the cache's keys. The sub-prefix keeps Clear and
// Stats scans away from the job queue's arbscan:queue: keys on the shared
// client.
const keyPrefix = "arbscan:cache:"

// RedisCache is the Redis-backed cache implementation. TTL enforcement and
// cross-process durability come from the server.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds connection settings for the backing store.
type RedisConfig struct {
	Addr     string
	Password string
	Logger   *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg *RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &RedisCache{
		client: client,
		logger: cfg.Logger,
	}, nil
}

// Client exposes the underlying connection for the job queue, which shares
// the backing store.
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

// Set stores a value with a TTL.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
	if err != nil {
		CacheErrorsTotal.Inc()
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	CacheSetsTotal.Inc()
	r.logger.Debug("cache-set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Get retrieves a value; an absent or expired key returns found=false.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		CacheMissesTotal.Inc()
		r.logger.Debug("cache-miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		CacheErrorsTotal.Inc()
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	CacheHitsTotal.Inc()
	r.logger.Debug("cache-hit", zap.String("key", key))
	return val, true, nil
}

// Exists reports whether key is present.
func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		CacheErrorsTotal.Inc()
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes a key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, keyPrefix+key).Err()
	if err != nil {
		CacheErrorsTotal.Inc()
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	CacheDeletesTotal.Inc()
	return nil
}

// Clear removes every key under the cache prefix, leaving the queue's keys
// and other tenants of the Redis instance untouched.
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		err := r.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			CacheErrorsTotal.Inc()
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrorsTotal.Inc()
		return fmt.Errorf("redis clear scan: %w", err)
	}

	r.logger.Info("cache-cleared")
	return nil
}

// Stats counts prefixed keys and reports the server's used memory.
func (r *RedisCache) Stats(ctx context.Context) (Stats, error) {
	keys := 0
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("redis stats scan: %w", err)
	}

	memory := "n/a"
	info, err := r.client.Info(ctx, "memory").Result()
	if err == nil {
		for _, line := range strings.Split(info, "\r\n") {
			if after, ok := strings.CutPrefix(line, "used_memory_human:"); ok {
				memory = after
				break
			}
		}
	}

	return Stats{Keys: keys, MemoryHuman: memory}, nil
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	r.logger.Info("cache-closed")
	return r.client.Close()
}
