package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/pkg/types"
)

const manListing = `[
	{
		"id": "man-1",
		"question": "US recession 2025",
		"url": "https://manifold.markets/m/us-recession-2025",
		"outcomeType": "BINARY",
		"probability": 0.38,
		"isResolved": false,
		"closeTime": 1767225600000,
		"totalLiquidity": 540.25
	},
	{
		"id": "man-2",
		"question": "Who wins the primary?",
		"url": "https://manifold.markets/m/primary",
		"outcomeType": "MULTIPLE_CHOICE",
		"isResolved": false
	},
	{
		"id": "man-3",
		"question": "Already settled?",
		"url": "https://manifold.markets/m/settled",
		"outcomeType": "BINARY",
		"probability": 0.99,
		"isResolved": true
	},
	{
		"id": "man-4",
		"question": "Binary but unpriced?",
		"url": "https://manifold.markets/m/unpriced",
		"outcomeType": "BINARY",
		"isResolved": false
	}
]`

func TestManifoldFetchMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// The listing is over-fetched to compensate for filtering
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("limit = %s, want 20 for a request of 10", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(manListing))
	}))
	defer server.Close()

	adapter := NewManifold(testConfig(server.URL), testLimiter(), zap.NewNop())

	markets, err := adapter.FetchMarkets(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchMarkets() error = %v", err)
	}

	// Only man-1 survives: binary, unresolved, priced
	if len(markets) != 1 {
		t.Fatalf("got %d markets, want 1", len(markets))
	}

	m := markets[0]
	if m.ID != "man-1" || m.Platform != types.PlatformManifold {
		t.Errorf("unexpected market %+v", m)
	}
	if !m.Outcomes[0].Price.Equal(decimal.RequireFromString("0.38")) {
		t.Errorf("Yes price = %s, want 0.38", m.Outcomes[0].Price)
	}
	if !m.Outcomes[1].Price.Equal(decimal.RequireFromString("0.62")) {
		t.Errorf("No price = %s, want 0.62 (1 - probability)", m.Outcomes[1].Price)
	}
	if m.EndDate == nil || !m.EndDate.Equal(time.UnixMilli(1767225600000).UTC()) {
		t.Errorf("EndDate = %v, want close time from epoch millis", m.EndDate)
	}
	if m.Liquidity == nil || !m.Liquidity.Equal(decimal.RequireFromString("540.25")) {
		t.Errorf("Liquidity = %v", m.Liquidity)
	}
}

func TestManifoldFetchMarketByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/man-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "man-1",
			"question": "US recession 2025",
			"url": "https://manifold.markets/m/us-recession-2025",
			"outcomeType": "BINARY",
			"probability": 0.38,
			"isResolved": false
		}`))
	}))
	defer server.Close()

	adapter := NewManifold(testConfig(server.URL), testLimiter(), zap.NewNop())

	m, err := adapter.FetchMarketByID(context.Background(), "man-1")
	if err != nil {
		t.Fatalf("FetchMarketByID() error = %v", err)
	}
	if m == nil || m.ID != "man-1" {
		t.Fatalf("FetchMarketByID() = %+v", m)
	}

	missing, err := adapter.FetchMarketByID(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Errorf("FetchMarketByID(missing) = %+v, %v, want nil, nil", missing, err)
	}
}
