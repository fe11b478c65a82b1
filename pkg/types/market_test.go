package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validMarket() StandardMarket {
	return StandardMarket{
		ID:       "m1",
		Platform: PlatformPolymarket,
		Title:    "Will it happen?",
		URL:      "https://example.com/m1",
		Outcomes: []Outcome{
			{Name: "Yes", Price: decimal.RequireFromString("0.45")},
			{Name: "No", Price: decimal.RequireFromString("0.55")},
		},
	}
}

func TestStandardMarketValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StandardMarket)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(m *StandardMarket) {},
			wantErr: false,
		},
		{
			name:    "empty-id",
			mutate:  func(m *StandardMarket) { m.ID = "" },
			wantErr: true,
		},
		{
			name:    "empty-title",
			mutate:  func(m *StandardMarket) { m.Title = "" },
			wantErr: true,
		},
		{
			name:    "unknown-platform",
			mutate:  func(m *StandardMarket) { m.Platform = "NYSE" },
			wantErr: true,
		},
		{
			name:    "one-outcome",
			mutate:  func(m *StandardMarket) { m.Outcomes = m.Outcomes[:1] },
			wantErr: true,
		},
		{
			name: "three-outcomes",
			mutate: func(m *StandardMarket) {
				m.Outcomes = append(m.Outcomes, Outcome{Name: "Maybe", Price: decimal.Zero})
			},
			wantErr: true,
		},
		{
			name: "price-above-one",
			mutate: func(m *StandardMarket) {
				m.Outcomes[0].Price = decimal.RequireFromString("1.01")
			},
			wantErr: true,
		},
		{
			name: "negative-price",
			mutate: func(m *StandardMarket) {
				m.Outcomes[1].Price = decimal.RequireFromString("-0.01")
			},
			wantErr: true,
		},
		{
			name: "boundary-prices-ok",
			mutate: func(m *StandardMarket) {
				m.Outcomes[0].Price = decimal.Zero
				m.Outcomes[1].Price = decimal.NewFromInt(1)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMarket()
			tt.mutate(&m)

			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	for _, known := range Platforms {
		p, err := ParsePlatform(string(known))
		if err != nil || p != known {
			t.Errorf("ParsePlatform(%q) = %v, %v", known, p, err)
		}
	}

	_, err := ParsePlatform("BET365")
	if err == nil {
		t.Error("ParsePlatform must reject unknown tags")
	}
}
