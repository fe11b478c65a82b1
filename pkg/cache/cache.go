package cache

import (
	"context"
	"time"
)

// Stats describes the current cache footprint.
type Stats struct {
	Keys        int    `json:"keys"`
	MemoryHuman string `json:"memoryHuman"`
}

// Cache is the shared key/value store backing market snapshots, scan
// results and alert cooldown markers. Implementations must be safe for
// concurrent use and must honour TTLs: an expired key behaves as absent.
type Cache interface {
	// Set stores a serialized value under key with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value. The second return is false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by this cache.
	Clear(ctx context.Context) error

	// Stats returns the key count and a human-readable memory figure.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying resources.
	Close() error
}
