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

// Manifold adapts the Manifold Markets API. Only binary, unresolved
// markets with a defined probability are kept; the listing endpoint is
// over-fetched at twice the requested limit and trimmed after filtering.
type Manifold struct {
	client *platformClient
	logger *zap.Logger
}

// NewManifold creates the Manifold adapter.
func NewManifold(cfg *config.Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Manifold {
	return &Manifold{
		client: newPlatformClient(types.PlatformManifold, cfg.ManifoldBaseURL, cfg.FetchTimeout, limiter, logger),
		logger: logger,
	}
}

// Platform returns the MAN tag.
func (m *Manifold) Platform() types.Platform {
	return types.PlatformManifold
}

type manMarket struct {
	ID          string `json:"id" validate:"required"`
	Question    string `json:"question" validate:"required"`
	URL         string `json:"url" validate:"required"`
	OutcomeType string `json:"outcomeType"`
	// Probability is decoded as a json.Number so the decimal conversion
	// never passes through a binary float.
	Probability    *json.Number `json:"probability"`
	IsResolved     bool         `json:"isResolved"`
	CloseTime      int64        `json:"closeTime"`
	TotalLiquidity *json.Number `json:"totalLiquidity"`
}

// FetchMarkets fetches and normalizes up to limit binary markets.
func (m *Manifold) FetchMarkets(ctx context.Context, limit int) ([]types.StandardMarket, error) {
	// Over-fetch: non-binary and resolved markets are filtered below.
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit*2))

	body, err := m.client.get(ctx, "/markets", query)
	if err != nil {
		return nil, err
	}

	var raw []manMarket
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformManifold, body, err)
	}

	markets := make([]types.StandardMarket, 0, limit)
	for i := range raw {
		err = validateRaw(types.PlatformManifold, &raw[i], body)
		if err != nil {
			return nil, err
		}

		sm, ok := m.normalize(&raw[i])
		if !ok {
			continue
		}
		markets = append(markets, *sm)

		if len(markets) >= limit {
			break
		}
	}

	MarketsFetchedTotal.WithLabelValues(string(types.PlatformManifold)).Add(float64(len(markets)))
	m.logger.Debug("markets-fetched",
		zap.String("platform", "MAN"),
		zap.Int("raw", len(raw)),
		zap.Int("normalized", len(markets)))

	return markets, nil
}

// FetchMarketByID fetches a single market; (nil, nil) on 404.
func (m *Manifold) FetchMarketByID(ctx context.Context, id string) (*types.StandardMarket, error) {
	body, err := m.client.get(ctx, "/market/"+url.PathEscape(id), nil)
	if err != nil {
		var pe *types.PlatformError
		if errors.As(err, &pe) && pe.StatusCode == 404 {
			return nil, nil
		}
		return nil, err
	}

	var raw manMarket
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformManifold, body, err)
	}

	err = validateRaw(types.PlatformManifold, &raw, body)
	if err != nil {
		return nil, err
	}

	sm, ok := m.normalize(&raw)
	if !ok {
		return nil, types.NewValidationError(types.PlatformManifold, body,
			fmt.Errorf("market %s is not an open binary market", raw.ID))
	}

	return sm, nil
}

// normalize converts one raw Manifold market: Yes.price = probability,
// No.price = 1 - probability.
func (m *Manifold) normalize(raw *manMarket) (*types.StandardMarket, bool) {
	if raw.OutcomeType != "BINARY" {
		MarketsSkippedTotal.WithLabelValues("MAN", "not_binary").Inc()
		return nil, false
	}
	if raw.IsResolved {
		MarketsSkippedTotal.WithLabelValues("MAN", "resolved").Inc()
		return nil, false
	}
	if raw.Probability == nil {
		MarketsSkippedTotal.WithLabelValues("MAN", "no_probability").Inc()
		return nil, false
	}

	prob, err := decimal.NewFromString(raw.Probability.String())
	if err != nil || prob.IsNegative() || prob.GreaterThan(decimal.NewFromInt(1)) {
		MarketsSkippedTotal.WithLabelValues("MAN", "price_out_of_range").Inc()
		return nil, false
	}

	sm := &types.StandardMarket{
		ID:       raw.ID,
		Platform: types.PlatformManifold,
		Title:    raw.Question,
		URL:      raw.URL,
		Outcomes: []types.Outcome{
			{Name: "Yes", Price: prob},
			{Name: "No", Price: decimal.NewFromInt(1).Sub(prob)},
		},
	}

	if raw.CloseTime > 0 {
		end := time.UnixMilli(raw.CloseTime).UTC()
		sm.EndDate = &end
	}
	if raw.TotalLiquidity != nil {
		if liq, err := decimal.NewFromString(raw.TotalLiquidity.String()); err == nil {
			sm.Liquidity = &liq
		}
	}

	if sm.Validate() != nil {
		MarketsSkippedTotal.WithLabelValues("MAN", "invariant").Inc()
		return nil, false
	}

	return sm, true
}
