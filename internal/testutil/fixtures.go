// Package testutil holds shared test fixtures.
package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"arbscan/pkg/types"
)

// BinaryMarket creates a binary test market with Yes/No prices given as
// decimal strings.
func BinaryMarket(platform types.Platform, id string, title string, yes string, no string) types.StandardMarket {
	return types.StandardMarket{
		ID:       id,
		Platform: platform,
		Title:    title,
		URL:      "https://example.com/" + id,
		Outcomes: []types.Outcome{
			{Name: "Yes", Price: decimal.RequireFromString(yes)},
			{Name: "No", Price: decimal.RequireFromString(no)},
		},
	}
}

// WithEndDate returns a copy of the market with the given end date.
func WithEndDate(m types.StandardMarket, end time.Time) types.StandardMarket {
	m.EndDate = &end
	return m
}

// WithLiquidity returns a copy of the market with the given liquidity.
func WithLiquidity(m types.StandardMarket, liquidity string) types.StandardMarket {
	l := decimal.RequireFromString(liquidity)
	m.Liquidity = &l
	return m
}

// Match pairs two markets with a perfect score.
func Match(a types.StandardMarket, b types.StandardMarket) types.MarketMatch {
	return types.MarketMatch{
		MarketA:   a,
		MarketB:   b,
		Score:     100,
		MatchedBy: types.MatchExact,
	}
}
