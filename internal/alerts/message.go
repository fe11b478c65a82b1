package alerts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"arbscan/internal/arbitrage"
)

// Webhook payload shapes. Any 2xx response is success; the body is never
// parsed further.
type webhookMessage struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Footer      embedFooter  `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

const embedColorGreen = 0x2ecc71

// buildMessage formats the rich alert for one opportunity: title, expected
// profit in dollars (per 100 contract pairs) and percent, end date, the
// per-platform price breakdown and direct links.
func buildMessage(opp *arbitrage.Opportunity) *webhookMessage {
	profitDollars := opp.ProfitMargin.Mul(decimal.NewFromInt(100))

	fields := []embedField{
		{
			Name: fmt.Sprintf("%s — %s", opp.MarketA.Platform, opp.OutcomeA),
			Value: fmt.Sprintf("price %s, fee %s\n[%s](%s)",
				opp.PriceA, opp.FeesA, opp.MarketA.Title, opp.MarketA.URL),
		},
		{
			Name: fmt.Sprintf("%s — %s", opp.MarketB.Platform, opp.OutcomeB),
			Value: fmt.Sprintf("price %s, fee %s\n[%s](%s)",
				opp.PriceB, opp.FeesB, opp.MarketB.Title, opp.MarketB.URL),
		},
		{Name: "Net cost", Value: opp.NetCost.String(), Inline: true},
		{Name: "Profit", Value: fmt.Sprintf("$%s / 100 pairs", profitDollars.StringFixed(2)), Inline: true},
		{Name: "ROI", Value: opp.ROI.StringFixed(2) + "%", Inline: true},
	}

	if opp.MarketA.EndDate != nil {
		fields = append(fields, embedField{
			Name:   "Ends",
			Value:  opp.MarketA.EndDate.Format("2006-01-02"),
			Inline: true,
		})
	}

	return &webhookMessage{
		Username: "arbscan",
		Embeds: []embed{{
			Title: "Arbitrage: " + opp.MarketA.Title,
			Description: fmt.Sprintf("Buy **%s** on %s and **%s** on %s",
				opp.OutcomeA, opp.MarketA.Platform, opp.OutcomeB, opp.MarketB.Platform),
			Color:     embedColorGreen,
			Fields:    fields,
			Footer:    embedFooter{Text: fmt.Sprintf("match score %d", opp.MatchScore)},
			Timestamp: opp.Timestamp.Format(time.RFC3339),
		}},
	}
}
