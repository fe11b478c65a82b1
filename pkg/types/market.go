package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies one of the supported prediction-market platforms.
type Platform string

const (
	PlatformPolymarket Platform = "PM"
	PlatformKalshi     Platform = "KAL"
	PlatformManifold   Platform = "MAN"
)

// Platforms lists every supported platform tag.
//
//nolint:gochecknoglobals // closed set
var Platforms = []Platform{PlatformPolymarket, PlatformKalshi, PlatformManifold}

// ParsePlatform converts a string tag into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Valid reports whether the platform tag is one of the closed set.
func (p Platform) Valid() bool {
	_, err := ParsePlatform(string(p))
	return err == nil
}

// Outcome is one side of a binary market.
type Outcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// StandardMarket is the normalized representation of one binary prediction
// market. Adapters produce it, everything downstream consumes it.
// Prices are decimals so cache round-trips lose no precision.
type StandardMarket struct {
	ID        string           `json:"id"`
	Platform  Platform         `json:"platform"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Outcomes  []Outcome        `json:"outcomes"`
	EndDate   *time.Time       `json:"endDate,omitempty"`
	Liquidity *decimal.Decimal `json:"liquidity,omitempty"`
	Category  string           `json:"category,omitempty"`
}

// Validate enforces the StandardMarket invariants: exactly two outcomes,
// prices in [0,1], non-empty ID and title.
func (m *StandardMarket) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("market has empty id")
	}
	if m.Title == "" {
		return fmt.Errorf("market %s has empty title", m.ID)
	}
	if !m.Platform.Valid() {
		return fmt.Errorf("market %s has unknown platform %q", m.ID, m.Platform)
	}
	if len(m.Outcomes) != 2 {
		return fmt.Errorf("market %s has %d outcomes, want 2", m.ID, len(m.Outcomes))
	}
	for _, o := range m.Outcomes {
		if o.Price.IsNegative() || o.Price.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("market %s outcome %q price %s outside [0,1]", m.ID, o.Name, o.Price)
		}
	}
	return nil
}

// MatchMethod records how a cross-platform match was established.
type MatchMethod string

const (
	MatchExact  MatchMethod = "exact"
	MatchFuzzy  MatchMethod = "fuzzy"
	MatchManual MatchMethod = "manual"
)

// MarketMatch pairs one market from each of two platforms with a confidence
// score in [60,100].
type MarketMatch struct {
	MarketA   StandardMarket `json:"marketA"`
	MarketB   StandardMarket `json:"marketB"`
	Score     int            `json:"score"`
	MatchedBy MatchMethod    `json:"matchedBy"`
}
