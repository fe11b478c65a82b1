package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryCache is an in-process Cache used in tests and when no Redis
// backing store is configured. Expiry is checked on read and a janitor
// sweeps expired entries in the background.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	logger  *zap.Logger
	done    chan struct{}
	closed  sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache and starts its janitor.
func NewMemoryCache(logger *zap.Logger) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		logger:  logger,
		done:    make(chan struct{}),
	}

	go c.janitor()

	return c
}

func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Set stores a value with a TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: buf, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	CacheSetsTotal.Inc()
	c.logger.Debug("cache-set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Get retrieves a value; expired entries behave as absent.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		CacheMissesTotal.Inc()
		c.logger.Debug("cache-miss", zap.String("key", key))
		return nil, false, nil
	}

	CacheHitsTotal.Inc()
	c.logger.Debug("cache-hit", zap.String("key", key))
	return e.value, true, nil
}

// Exists reports whether key is present and unexpired.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.Get(ctx, key)
	return ok, err
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	CacheDeletesTotal.Inc()
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	c.logger.Info("cache-cleared")
	return nil
}

// Stats counts unexpired keys and the bytes they hold.
func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	now := time.Now()

	c.mu.RLock()
	keys := 0
	bytes := 0
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			continue
		}
		keys++
		bytes += len(e.value)
	}
	c.mu.RUnlock()

	return Stats{Keys: keys, MemoryHuman: humanBytes(bytes)}, nil
}

// Close stops the janitor.
func (c *MemoryCache) Close() error {
	c.closed.Do(func() {
		close(c.done)
	})
	c.logger.Info("cache-closed")
	return nil
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
