// Package arbitrage evaluates matched market pairs for risk-free returns.
//
// For a binary pair the two complementary buy-directions are checked:
// (A outcome 0, B outcome 1) and (A outcome 1, B outcome 0). Whichever
// outcome resolves, exactly one purchase pays out 1, so any direction with
// net cost below 1 after fees is a guaranteed profit. All arithmetic is
// decimal; binary floats never enter the money path.
package arbitrage

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/pkg/types"
)

// Config holds calculator configuration. FeeRates is immutable after
// process start.
type Config struct {
	FeeRates map[types.Platform]decimal.Decimal
	// MinROI is the minimum return fraction (0.01 = 1%) for an emitted
	// opportunity.
	MinROI decimal.Decimal
	// MinLiquidity rejects markets quoting less liquidity; markets without
	// a liquidity figure are not rejected.
	MinLiquidity decimal.Decimal
	Logger       *zap.Logger
}

// Calculator finds profitable buy-directions across matched pairs.
type Calculator struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Calculator.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, logger: cfg.Logger}
}

// FindArbitrage evaluates both buy-directions for every binary match and
// returns the profitable opportunities.
func (c *Calculator) FindArbitrage(matches []types.MarketMatch) []Opportunity {
	opportunities := make([]Opportunity, 0)

	for i := range matches {
		match := &matches[i]
		if len(match.MarketA.Outcomes) != 2 || len(match.MarketB.Outcomes) != 2 {
			OpportunitiesRejectedTotal.WithLabelValues("not_binary").Inc()
			continue
		}
		if !c.liquid(&match.MarketA) || !c.liquid(&match.MarketB) {
			OpportunitiesRejectedTotal.WithLabelValues("below_min_liquidity").Inc()
			continue
		}

		for _, direction := range [2][2]int{{0, 1}, {1, 0}} {
			opp, ok := c.evaluate(match, direction[0], direction[1])
			if !ok {
				continue
			}
			opportunities = append(opportunities, *opp)
		}
	}

	OpportunitiesDetectedTotal.Add(float64(len(opportunities)))
	return opportunities
}

// evaluate checks a single buy-direction: outcome idxA on market A paired
// with outcome idxB on market B.
func (c *Calculator) evaluate(match *types.MarketMatch, idxA, idxB int) (*Opportunity, bool) {
	outcomeA := match.MarketA.Outcomes[idxA]
	outcomeB := match.MarketB.Outcomes[idxB]

	// A combined price of 1 or more can never profit, before fees even.
	if outcomeA.Price.Add(outcomeB.Price).GreaterThanOrEqual(decimal.NewFromInt(1)) {
		OpportunitiesRejectedTotal.WithLabelValues("cost_at_or_above_one").Inc()
		return nil, false
	}

	opp := newOpportunity(
		match,
		outcomeA,
		outcomeB,
		c.cfg.FeeRates[match.MarketA.Platform],
		c.cfg.FeeRates[match.MarketB.Platform],
	)

	if !opp.IsProfitable {
		OpportunitiesRejectedTotal.WithLabelValues("unprofitable_after_fees").Inc()
		return nil, false
	}

	minROIPercent := c.cfg.MinROI.Mul(decimal.NewFromInt(100))
	if opp.ROI.LessThan(minROIPercent) {
		OpportunitiesRejectedTotal.WithLabelValues("below_min_roi").Inc()
		return nil, false
	}

	roi, _ := opp.ROI.Float64()
	ROIPercent.Observe(roi)
	c.logger.Info("arbitrage-opportunity-found",
		zap.String("opportunity-id", opp.ID),
		zap.String("market-a", opp.MarketA.ID),
		zap.String("market-b", opp.MarketB.ID),
		zap.String("profit-margin", opp.ProfitMargin.String()),
		zap.String("roi", opp.ROI.StringFixed(2)))

	return opp, true
}

func (c *Calculator) liquid(m *types.StandardMarket) bool {
	if m.Liquidity == nil {
		return true
	}
	return m.Liquidity.GreaterThanOrEqual(c.cfg.MinLiquidity)
}
