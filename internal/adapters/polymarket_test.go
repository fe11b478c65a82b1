package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/pkg/config"
	"arbscan/pkg/ratelimit"
	"arbscan/pkg/types"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		PolymarketBaseURL: baseURL,
		KalshiBaseURL:     baseURL,
		ManifoldBaseURL:   baseURL,
		FetchTimeout:      5 * time.Second,
	}
}

// testLimiter paces nothing so adapter tests stay fast.
func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(map[types.Platform]ratelimit.PlatformLimit{}, zap.NewNop())
}

const pmListing = `[
	{
		"id": "pm-1",
		"question": "Will candidate X win the 2026 election?",
		"slug": "candidate-x-2026",
		"outcomes": "[\"Yes\", \"No\"]",
		"outcomePrices": "[\"0.45\", \"0.55\"]",
		"endDate": "2026-11-03T12:00:00Z",
		"liquidity": "25000.50",
		"category": "politics"
	},
	{
		"id": "pm-2",
		"question": "Which team wins the championship?",
		"slug": "championship",
		"outcomes": "[\"A\", \"B\", \"C\"]",
		"outcomePrices": "[\"0.2\", \"0.3\", \"0.5\"]"
	},
	{
		"id": "pm-3",
		"question": "Will it rain tomorrow?",
		"slug": "rain-tomorrow",
		"outcomes": "[\"Yes\", \"No\"]",
		"outcomePrices": "[\"0.10\", \"0.90\"]"
	}
]`

func TestPolymarketFetchMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("closed") != "false" || r.URL.Query().Get("active") != "true" {
			t.Errorf("missing open-market filters in query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pmListing))
	}))
	defer server.Close()

	adapter := NewPolymarket(testConfig(server.URL), testLimiter(), zap.NewNop())

	markets, err := adapter.FetchMarkets(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchMarkets() error = %v", err)
	}

	// pm-2 is three-way and must be skipped, not surfaced
	if len(markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(markets))
	}

	m := markets[0]
	if m.ID != "pm-1" || m.Platform != types.PlatformPolymarket {
		t.Errorf("unexpected market %+v", m)
	}
	if m.URL != "https://polymarket.com/event/candidate-x-2026" {
		t.Errorf("URL = %s", m.URL)
	}
	if !m.Outcomes[0].Price.Equal(decimal.RequireFromString("0.45")) {
		t.Errorf("Yes price = %s, want 0.45", m.Outcomes[0].Price)
	}
	if m.EndDate == nil || m.EndDate.Year() != 2026 {
		t.Errorf("EndDate = %v", m.EndDate)
	}
	if m.Liquidity == nil || !m.Liquidity.Equal(decimal.RequireFromString("25000.50")) {
		t.Errorf("Liquidity = %v", m.Liquidity)
	}

	for i := range markets {
		if err = markets[i].Validate(); err != nil {
			t.Errorf("adapter emitted invalid market: %v", err)
		}
	}
}

func TestPolymarketFetchMarketByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	adapter := NewPolymarket(testConfig(server.URL), testLimiter(), zap.NewNop())

	m, err := adapter.FetchMarketByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FetchMarketByID() error = %v, want nil for 404", err)
	}
	if m != nil {
		t.Errorf("FetchMarketByID() = %+v, want nil", m)
	}
}

func TestPolymarketRateLimitRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pmListing))
	}))
	defer server.Close()

	adapter := NewPolymarket(testConfig(server.URL), testLimiter(), zap.NewNop())

	start := time.Now()
	markets, err := adapter.FetchMarkets(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchMarkets() error = %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("attempt count = %d, want 2", got)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("retry waited %s, want at least the Retry-After second", elapsed)
	}
	if len(markets) != 2 {
		t.Errorf("got %d markets after retry, want 2", len(markets))
	}
}

func TestPolymarketClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := NewPolymarket(testConfig(server.URL), testLimiter(), zap.NewNop())

	_, err := adapter.FetchMarkets(context.Background(), 10)
	if err == nil {
		t.Fatal("FetchMarkets() must surface the 400")
	}
	if types.Retryable(err) {
		t.Error("400 must classify as non-retryable")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
