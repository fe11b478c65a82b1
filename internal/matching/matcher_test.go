package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/testutil"
	"arbscan/pkg/types"
)

func newTestMatcher() *Matcher {
	return New(Config{
		Threshold:          0.60,
		MaxDateDiffDays:    30,
		MinMatchCharLength: 3,
		Logger:             zap.NewNop(),
	})
}

func TestFindMatchesIdenticalTitle(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession 2025", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	match := matches[0]
	if match.Score != 100 {
		t.Errorf("Score = %d, want 100", match.Score)
	}
	if match.MatchedBy != types.MatchExact {
		t.Errorf("MatchedBy = %s, want exact", match.MatchedBy)
	}
	if match.MarketA.Platform == match.MarketB.Platform {
		t.Error("matched markets must come from distinct platforms")
	}
}

func TestFindMatchesEquivalentKeywordsStillFuzzy(t *testing.T) {
	m := newTestMatcher()

	// Stop words and punctuation collapse both titles to the same keyword
	// set; that makes the ranking score 100 but the method stays fuzzy,
	// because the titles themselves differ.
	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession in 2025?", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Score != 100 {
		t.Errorf("Score = %d, want 100", matches[0].Score)
	}
	if matches[0].MatchedBy != types.MatchFuzzy {
		t.Errorf("MatchedBy = %s, want fuzzy", matches[0].MatchedBy)
	}
}

func TestFindMatchesFuzzyTitle(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "Will the Fed raise interest rates in March?", "0.30", "0.70")
	b := testutil.BinaryMarket(types.PlatformKalshi, "kal-1", "Fed raises interest rates March", "0.35", "0.65")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MatchedBy != types.MatchFuzzy {
		t.Errorf("MatchedBy = %s, want fuzzy", matches[0].MatchedBy)
	}
	if matches[0].Score < 60 {
		t.Errorf("Score = %d, want at least 60", matches[0].Score)
	}
}

func TestFindMatchesRejectsSamePlatform(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession 2025", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformPolymarket, "pm-2", "US recession 2025", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 0 {
		t.Errorf("same-platform pair must not match, got %d", len(matches))
	}
}

func TestFindMatchesDateProximity(t *testing.T) {
	m := newTestMatcher()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	a := testutil.WithEndDate(
		testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession 2025", "0.45", "0.55"), base)

	t.Run("far-apart-end-dates-reject", func(t *testing.T) {
		b := testutil.WithEndDate(
			testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40"),
			base.AddDate(0, 0, 31))

		matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
		if len(matches) != 0 {
			t.Errorf("end dates 31 days apart must reject, got %d matches", len(matches))
		}
	})

	t.Run("within-window-accept", func(t *testing.T) {
		b := testutil.WithEndDate(
			testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40"),
			base.AddDate(0, 0, 29))

		matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
		if len(matches) != 1 {
			t.Errorf("end dates 29 days apart must pass, got %d matches", len(matches))
		}
	})

	t.Run("missing-end-date-never-rejects", func(t *testing.T) {
		b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40")

		matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
		if len(matches) != 1 {
			t.Errorf("missing end date must not trip the date filter, got %d matches", len(matches))
		}
	})
}

func TestFindMatchesRequiresSharedKeyword(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "Bitcoin above 100k this year", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "Lakers win championship", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 0 {
		t.Errorf("disjoint keyword sets must not match, got %d", len(matches))
	}
}

func TestFindMatchesAllStopWords(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "Will the be on at", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "Will the be on at", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 0 {
		t.Errorf("titles made of stop words must not match, got %d", len(matches))
	}
}

func TestFindMatchesOutcomeCardinality(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession 2025", "0.45", "0.55")
	b := testutil.BinaryMarket(types.PlatformManifold, "man-1", "US recession 2025", "0.60", "0.40")
	b.Outcomes = append(b.Outcomes, types.Outcome{Name: "Maybe", Price: decimal.Zero})

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{b})
	if len(matches) != 0 {
		t.Errorf("outcome cardinality mismatch must not match, got %d", len(matches))
	}
}

func TestFindMatchesPicksBestCandidate(t *testing.T) {
	m := newTestMatcher()

	a := testutil.BinaryMarket(types.PlatformPolymarket, "pm-1", "US recession in 2025?", "0.45", "0.55")
	near := testutil.BinaryMarket(types.PlatformManifold, "man-1", "Global recession 2025 severe", "0.50", "0.50")
	exact := testutil.BinaryMarket(types.PlatformManifold, "man-2", "US recession 2025", "0.60", "0.40")

	matches := m.FindMatches([]types.StandardMarket{a}, []types.StandardMarket{near, exact})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MarketB.ID != "man-2" {
		t.Errorf("best candidate = %s, want the exact title man-2", matches[0].MarketB.ID)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "punctuation-and-stop-words",
			title: "Will the Fed raise rates?",
			want:  []string{"fed", "raise", "rates"},
		},
		{
			name:  "short-tokens-dropped",
			title: "US GDP up in Q1",
			want:  []string{"gdp"},
		},
		{
			name:  "numbers-kept",
			title: "Bitcoin above 100000 by 2026",
			want:  []string{"bitcoin", "above", "100000", "2026"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywords(tt.title, 3)
			if len(got) != len(tt.want) {
				t.Fatalf("keywords() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("keywords() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNormalizedDistance(t *testing.T) {
	if d := normalizedDistance("abc", "abc"); d != 0 {
		t.Errorf("identical strings distance = %f, want 0", d)
	}
	if d := normalizedDistance("", ""); d != 0 {
		t.Errorf("empty strings distance = %f, want 0", d)
	}
	if d := normalizedDistance("abcd", "wxyz"); d != 1 {
		t.Errorf("disjoint strings distance = %f, want 1", d)
	}
	if confidence(0.25) != 75 {
		t.Errorf("confidence(0.25) = %d, want 75", confidence(0.25))
	}
}
