package arbitrage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbscan/pkg/types"
)

// Opportunity is one realized buy-direction across a matched market pair:
// buy OutcomeA on platform A and OutcomeB on platform B, guaranteeing a
// payout of 1 whichever side resolves. All money fields are decimals.
type Opportunity struct {
	ID      string               `json:"id"`
	MarketA types.StandardMarket `json:"marketA"`
	MarketB types.StandardMarket `json:"marketB"`

	OutcomeA string          `json:"outcomeA"`
	OutcomeB string          `json:"outcomeB"`
	PriceA   decimal.Decimal `json:"priceA"`
	PriceB   decimal.Decimal `json:"priceB"`

	TotalCost    decimal.Decimal `json:"totalCost"`
	FeesA        decimal.Decimal `json:"feesA"`
	FeesB        decimal.Decimal `json:"feesB"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	NetCost      decimal.Decimal `json:"netCost"`
	ProfitMargin decimal.Decimal `json:"profitMargin"`
	// ROI is the profit margin divided by net cost, as a percentage.
	ROI          decimal.Decimal `json:"roi"`
	IsProfitable bool            `json:"isProfitable"`
	MatchScore   int             `json:"matchScore"`
	Timestamp    time.Time       `json:"timestamp"`
}

// newOpportunity evaluates one buy-direction with fee accounting.
func newOpportunity(
	match *types.MarketMatch,
	outcomeA types.Outcome,
	outcomeB types.Outcome,
	feeRateA decimal.Decimal,
	feeRateB decimal.Decimal,
) *Opportunity {
	totalCost := outcomeA.Price.Add(outcomeB.Price)
	feesA := outcomeA.Price.Mul(feeRateA)
	feesB := outcomeB.Price.Mul(feeRateB)
	totalFees := feesA.Add(feesB)
	netCost := totalCost.Add(totalFees)
	profitMargin := decimal.NewFromInt(1).Sub(netCost)
	isProfitable := profitMargin.IsPositive()

	roi := decimal.Zero
	if isProfitable {
		roi = profitMargin.Div(netCost).Mul(decimal.NewFromInt(100))
	}

	return &Opportunity{
		ID:           uuid.New().String(),
		MarketA:      match.MarketA,
		MarketB:      match.MarketB,
		OutcomeA:     outcomeA.Name,
		OutcomeB:     outcomeB.Name,
		PriceA:       outcomeA.Price,
		PriceB:       outcomeB.Price,
		TotalCost:    totalCost,
		FeesA:        feesA,
		FeesB:        feesB,
		TotalFees:    totalFees,
		NetCost:      netCost,
		ProfitMargin: profitMargin,
		ROI:          roi,
		IsProfitable: isProfitable,
		MatchScore:   match.Score,
		Timestamp:    time.Now().UTC(),
	}
}

// PairKey is the deterministic fingerprint of the underlying market pair,
// used for alert deduplication.
func (o *Opportunity) PairKey() (string, string) {
	return o.MarketA.ID, o.MarketB.ID
}

// String returns a one-line human-readable summary.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] %s/%s buy %s@%s + %s@%s net=%s margin=%s roi=%s%%",
		o.ID[:8],
		o.MarketA.Platform, o.MarketB.Platform,
		o.OutcomeA, o.PriceA,
		o.OutcomeB, o.PriceB,
		o.NetCost, o.ProfitMargin, o.ROI.StringFixed(2),
	)
}
