package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/pkg/config"
	"arbscan/pkg/ratelimit"
	"arbscan/pkg/types"
)

// Kalshi adapts the Kalshi trade API. Prices arrive as integer cents and
// are converted to decimals; only binary markets quoting both ask sides
// are kept.
type Kalshi struct {
	client *platformClient
	logger *zap.Logger
}

// NewKalshi creates the Kalshi adapter.
func NewKalshi(cfg *config.Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Kalshi {
	return &Kalshi{
		client: newPlatformClient(types.PlatformKalshi, cfg.KalshiBaseURL, cfg.FetchTimeout, limiter, logger),
		logger: logger,
	}
}

// Platform returns the KAL tag.
func (k *Kalshi) Platform() types.Platform {
	return types.PlatformKalshi
}

type kalMarket struct {
	Ticker     string `json:"ticker" validate:"required"`
	Title      string `json:"title" validate:"required"`
	MarketType string `json:"market_type"`
	// Status is an arbitrary string; fixtures show both "open" and
	// "active" in circulation, so it never rejects a payload on its own.
	Status    string `json:"status"`
	YesAsk    int64  `json:"yes_ask"`
	NoAsk     int64  `json:"no_ask"`
	CloseTime string `json:"close_time"`
	Liquidity int64  `json:"liquidity"`
	Category  string `json:"category"`
}

type kalMarketsResponse struct {
	Markets []kalMarket `json:"markets" validate:"required"`
	Cursor  string      `json:"cursor"`
}

type kalMarketResponse struct {
	Market kalMarket `json:"market"`
}

// FetchMarkets fetches open markets and normalizes them.
func (k *Kalshi) FetchMarkets(ctx context.Context, limit int) ([]types.StandardMarket, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("status", "open")

	body, err := k.client.get(ctx, "/markets", query)
	if err != nil {
		return nil, err
	}

	var raw kalMarketsResponse
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformKalshi, body, err)
	}

	markets := make([]types.StandardMarket, 0, len(raw.Markets))
	for i := range raw.Markets {
		err = validateRaw(types.PlatformKalshi, &raw.Markets[i], body)
		if err != nil {
			return nil, err
		}

		sm, ok := k.normalize(&raw.Markets[i])
		if !ok {
			continue
		}
		markets = append(markets, *sm)

		if len(markets) >= limit {
			break
		}
	}

	MarketsFetchedTotal.WithLabelValues(string(types.PlatformKalshi)).Add(float64(len(markets)))
	k.logger.Debug("markets-fetched",
		zap.String("platform", "KAL"),
		zap.Int("raw", len(raw.Markets)),
		zap.Int("normalized", len(markets)))

	return markets, nil
}

// FetchMarketByID fetches a single market by ticker; (nil, nil) on 404.
func (k *Kalshi) FetchMarketByID(ctx context.Context, id string) (*types.StandardMarket, error) {
	body, err := k.client.get(ctx, "/markets/"+url.PathEscape(id), nil)
	if err != nil {
		var pe *types.PlatformError
		if errors.As(err, &pe) && pe.StatusCode == 404 {
			return nil, nil
		}
		return nil, err
	}

	var raw kalMarketResponse
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformKalshi, body, err)
	}

	err = validateRaw(types.PlatformKalshi, &raw.Market, body)
	if err != nil {
		return nil, err
	}

	sm, ok := k.normalize(&raw.Market)
	if !ok {
		return nil, types.NewValidationError(types.PlatformKalshi, body,
			fmt.Errorf("market %s is not a quotable binary market", raw.Market.Ticker))
	}

	return sm, nil
}

// normalize converts one raw Kalshi market. Cent prices become decimals
// with two fractional digits, never passing through a float.
func (k *Kalshi) normalize(raw *kalMarket) (*types.StandardMarket, bool) {
	if raw.MarketType != "binary" {
		MarketsSkippedTotal.WithLabelValues("KAL", "not_binary").Inc()
		return nil, false
	}
	if raw.YesAsk <= 0 || raw.NoAsk <= 0 {
		MarketsSkippedTotal.WithLabelValues("KAL", "missing_ask").Inc()
		return nil, false
	}

	yes := decimal.New(raw.YesAsk, -2)
	no := decimal.New(raw.NoAsk, -2)
	one := decimal.NewFromInt(1)
	if yes.GreaterThan(one) || no.GreaterThan(one) {
		MarketsSkippedTotal.WithLabelValues("KAL", "price_out_of_range").Inc()
		return nil, false
	}

	sm := &types.StandardMarket{
		ID:       raw.Ticker,
		Platform: types.PlatformKalshi,
		Title:    raw.Title,
		URL:      "https://kalshi.com/markets/" + raw.Ticker,
		Outcomes: []types.Outcome{
			{Name: "Yes", Price: yes},
			{Name: "No", Price: no},
		},
		Category: raw.Category,
	}

	if raw.CloseTime != "" {
		if end, err := time.Parse(time.RFC3339, raw.CloseTime); err == nil {
			sm.EndDate = &end
		}
	}
	if raw.Liquidity > 0 {
		liq := decimal.New(raw.Liquidity, -2)
		sm.Liquidity = &liq
	}

	if sm.Validate() != nil {
		MarketsSkippedTotal.WithLabelValues("KAL", "invariant").Inc()
		return nil, false
	}

	return sm, true
}
