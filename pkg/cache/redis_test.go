package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), &RedisConfig{
		Addr:   mr.Addr(),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})

	return c, mr
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(context.Background(), &RedisConfig{
		Addr:   "127.0.0.1:1",
		Logger: zap.NewNop(),
	})
	require.Error(t, err)
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), val)

	// Keys are namespaced under the cache prefix
	_, err = c.Client().Get(ctx, "arbscan:cache:k").Result()
	require.NoError(t, err)
}

func TestRedisCacheTTLExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 30*time.Second))

	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "expired key must behave as absent")

	present, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, present)
}

func TestRedisCacheClearOnlyOwnPrefix(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, mr.Set("other-tenant", "x"))
	require.NoError(t, mr.Set("arbscan:queue:scan:waiting", "job"))

	require.NoError(t, c.Clear(ctx))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Keys)

	require.True(t, mr.Exists("other-tenant"), "clear must not touch foreign keys")
	require.True(t, mr.Exists("arbscan:queue:scan:waiting"), "clear must not touch queue state")
}

func TestRedisCacheStatsExcludesQueueKeys(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mr.Set("arbscan:queue:scan:waiting", "job"))
	require.NoError(t, mr.Set("arbscan:queue:scan:completed", "job"))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Keys, "queue keys must not count as cache entries")
}

func TestRedisCacheStats(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Keys)
	require.NotEmpty(t, stats.MemoryHuman)
}
