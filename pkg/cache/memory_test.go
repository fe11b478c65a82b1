package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/pkg/types"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop())
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "k", []byte("v"), time.Minute)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	val, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", val, ok, err)
	}
	if string(val) != "v" {
		t.Errorf("Get() = %q, want %q", val, "v")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "k", []byte("v"), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expired key must behave as absent")
	}

	present, err := c.Exists(ctx, "k")
	if err != nil || present {
		t.Errorf("Exists() = %v, %v, want false, nil", present, err)
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	err := c.Delete(ctx, "a")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if present, _ := c.Exists(ctx, "a"); present {
		t.Error("deleted key still present")
	}

	// Deleting an absent key is not an error
	if err = c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(absent) error = %v", err)
	}

	err = c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Keys != 0 {
		t.Errorf("Stats().Keys = %d after Clear, want 0", stats.Keys)
	}
}

func TestJSONRoundTripPreservesDecimals(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	end := time.Date(2026, 11, 3, 12, 0, 0, 0, time.UTC)
	liquidity := decimal.RequireFromString("12345.678901234567890123")
	market := types.StandardMarket{
		ID:       "m1",
		Platform: types.PlatformPolymarket,
		Title:    "Will it happen?",
		URL:      "https://example.com/m1",
		Outcomes: []types.Outcome{
			{Name: "Yes", Price: decimal.RequireFromString("0.333333333333333333")},
			{Name: "No", Price: decimal.RequireFromString("0.666666666666666667")},
		},
		EndDate:   &end,
		Liquidity: &liquidity,
	}

	err := SetJSON(ctx, c, "markets:PM", []types.StandardMarket{market}, time.Minute)
	if err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var got []types.StandardMarket
	hit, err := GetJSON(ctx, c, "markets:PM", &got)
	if err != nil || !hit {
		t.Fatalf("GetJSON() = %v, %v", hit, err)
	}
	if len(got) != 1 {
		t.Fatalf("round-trip returned %d markets, want 1", len(got))
	}

	if !got[0].Outcomes[0].Price.Equal(market.Outcomes[0].Price) {
		t.Errorf("price lost precision: %s != %s", got[0].Outcomes[0].Price, market.Outcomes[0].Price)
	}
	if !got[0].Liquidity.Equal(liquidity) {
		t.Errorf("liquidity lost precision: %s != %s", got[0].Liquidity, liquidity)
	}
	if !got[0].EndDate.Equal(end) {
		t.Errorf("end date changed: %s != %s", got[0].EndDate, end)
	}
}

func TestGetJSONMissLeavesOutUntouched(t *testing.T) {
	c := newTestMemoryCache(t)

	out := []types.StandardMarket{{ID: "sentinel"}}
	hit, err := GetJSON(context.Background(), c, "absent", &out)
	if err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if hit {
		t.Error("GetJSON() on absent key must report a miss")
	}
	if out[0].ID != "sentinel" {
		t.Error("miss must not modify out")
	}
}
