package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// SetJSON serializes v and stores it under key. Decimal fields marshal as
// quoted strings and timestamps as RFC 3339, so values survive round-trips
// without losing precision.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return c.Set(ctx, key, data, ttl)
}

// GetJSON retrieves and deserializes the value under key into out.
// Returns false without touching out when the key is absent.
func GetJSON(ctx context.Context, c Cache, key string, out any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return true, nil
}
