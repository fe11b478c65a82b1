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

// Polymarket adapts the Gamma API. Outcome names and prices arrive as
// JSON-encoded string arrays inside the market object.
type Polymarket struct {
	client *platformClient
	logger *zap.Logger
}

// NewPolymarket creates the Polymarket adapter.
func NewPolymarket(cfg *config.Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Polymarket {
	return &Polymarket{
		client: newPlatformClient(types.PlatformPolymarket, cfg.PolymarketBaseURL, cfg.FetchTimeout, limiter, logger),
		logger: logger,
	}
}

// Platform returns the PM tag.
func (p *Polymarket) Platform() types.Platform {
	return types.PlatformPolymarket
}

type pmMarket struct {
	ID            string `json:"id" validate:"required"`
	Question      string `json:"question" validate:"required"`
	Slug          string `json:"slug"`
	Outcomes      string `json:"outcomes" validate:"required"`
	OutcomePrices string `json:"outcomePrices" validate:"required"`
	EndDate       string `json:"endDate"`
	Liquidity     string `json:"liquidity"`
	Category      string `json:"category"`
}

// FetchMarkets fetches active, open markets and normalizes them.
func (p *Polymarket) FetchMarkets(ctx context.Context, limit int) ([]types.StandardMarket, error) {
	query := url.Values{}
	query.Set("closed", "false")
	query.Set("active", "true")
	query.Set("limit", strconv.Itoa(limit))

	body, err := p.client.get(ctx, "/markets", query)
	if err != nil {
		return nil, err
	}

	var raw []pmMarket
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformPolymarket, body, err)
	}

	markets := make([]types.StandardMarket, 0, len(raw))
	for i := range raw {
		err = validateRaw(types.PlatformPolymarket, &raw[i], body)
		if err != nil {
			return nil, err
		}

		m, ok := p.normalize(&raw[i])
		if !ok {
			continue
		}
		markets = append(markets, *m)

		if len(markets) >= limit {
			break
		}
	}

	MarketsFetchedTotal.WithLabelValues(string(types.PlatformPolymarket)).Add(float64(len(markets)))
	p.logger.Debug("markets-fetched",
		zap.String("platform", "PM"),
		zap.Int("raw", len(raw)),
		zap.Int("normalized", len(markets)))

	return markets, nil
}

// FetchMarketByID fetches a single market; (nil, nil) on 404.
func (p *Polymarket) FetchMarketByID(ctx context.Context, id string) (*types.StandardMarket, error) {
	body, err := p.client.get(ctx, "/markets/"+url.PathEscape(id), nil)
	if err != nil {
		var pe *types.PlatformError
		if errors.As(err, &pe) && pe.StatusCode == 404 {
			return nil, nil
		}
		return nil, err
	}

	var raw pmMarket
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, types.NewValidationError(types.PlatformPolymarket, body, err)
	}

	err = validateRaw(types.PlatformPolymarket, &raw, body)
	if err != nil {
		return nil, err
	}

	m, ok := p.normalize(&raw)
	if !ok {
		return nil, types.NewValidationError(types.PlatformPolymarket, body,
			fmt.Errorf("market %s is not a valid binary market", raw.ID))
	}

	return m, nil
}

// normalize converts one raw Gamma market. Markets that are well-formed but
// not binary (or carry out-of-range prices) are skipped, never surfaced.
func (p *Polymarket) normalize(raw *pmMarket) (*types.StandardMarket, bool) {
	var names []string
	if err := json.Unmarshal([]byte(raw.Outcomes), &names); err != nil {
		MarketsSkippedTotal.WithLabelValues("PM", "bad_outcomes").Inc()
		return nil, false
	}

	var prices []string
	if err := json.Unmarshal([]byte(raw.OutcomePrices), &prices); err != nil {
		MarketsSkippedTotal.WithLabelValues("PM", "bad_prices").Inc()
		return nil, false
	}

	if len(names) != 2 || len(prices) != 2 {
		MarketsSkippedTotal.WithLabelValues("PM", "not_binary").Inc()
		return nil, false
	}

	outcomes := make([]types.Outcome, 0, 2)
	for i := range names {
		price, err := decimal.NewFromString(prices[i])
		if err != nil || price.IsNegative() || price.GreaterThan(decimal.NewFromInt(1)) {
			MarketsSkippedTotal.WithLabelValues("PM", "price_out_of_range").Inc()
			return nil, false
		}
		outcomes = append(outcomes, types.Outcome{Name: names[i], Price: price})
	}

	m := &types.StandardMarket{
		ID:       raw.ID,
		Platform: types.PlatformPolymarket,
		Title:    raw.Question,
		URL:      "https://polymarket.com/event/" + raw.Slug,
		Outcomes: outcomes,
		Category: raw.Category,
	}

	if raw.EndDate != "" {
		if end, err := time.Parse(time.RFC3339, raw.EndDate); err == nil {
			m.EndDate = &end
		}
	}
	if raw.Liquidity != "" {
		if liq, err := decimal.NewFromString(raw.Liquidity); err == nil {
			m.Liquidity = &liq
		}
	}

	if m.Validate() != nil {
		MarketsSkippedTotal.WithLabelValues("PM", "invariant").Inc()
		return nil, false
	}

	return m, true
}
