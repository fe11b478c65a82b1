// Package matching maps markets from one platform to their best
// counterparts on another.
//
// A cheap pre-filter (date proximity, keyword overlap, outcome
// cardinality) cuts the candidate set before the fuzzy ranker runs; the
// pre-filter is the performance lever for the O(|A|·|B|) pairing.
package matching

import (
	"time"

	"go.uber.org/zap"

	"arbscan/pkg/types"
)

// Config holds matcher tuning.
type Config struct {
	// Threshold is the minimum similarity in (0,1] for an accepted match.
	Threshold float64
	// MaxDateDiffDays rejects candidates whose end dates are further apart.
	MaxDateDiffDays int
	// MinMatchCharLength is the minimum keyword token length.
	MinMatchCharLength int
	Logger             *zap.Logger
}

// Matcher finds cross-platform market pairs.
type Matcher struct {
	cfg    Config
	ranker *ranker
	logger *zap.Logger
}

// New creates a Matcher.
func New(cfg Config) *Matcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.60
	}
	if cfg.MaxDateDiffDays <= 0 {
		cfg.MaxDateDiffDays = 30
	}
	if cfg.MinMatchCharLength <= 0 {
		cfg.MinMatchCharLength = 3
	}

	return &Matcher{
		cfg: cfg,
		ranker: &ranker{
			maxDistance: 1 - cfg.Threshold,
			minTokenLen: cfg.MinMatchCharLength,
		},
		logger: cfg.Logger,
	}
}

// FindMatches returns at most one match per element of listA: the
// best-ranked candidate from listB that survives the pre-filter and meets
// the similarity threshold.
func (m *Matcher) FindMatches(listA, listB []types.StandardMarket) []types.MarketMatch {
	start := time.Now()
	matches := make([]types.MarketMatch, 0)

	keywordsB := make([][]string, len(listB))
	for i := range listB {
		keywordsB[i] = keywords(listB[i].Title, m.cfg.MinMatchCharLength)
	}

	for i := range listA {
		a := &listA[i]
		kwA := keywords(a.Title, m.cfg.MinMatchCharLength)

		candidates := make([]int, 0, len(listB))
		titles := make([]string, 0, len(listB))
		for j := range listB {
			b := &listB[j]
			if !m.prefilter(a, kwA, b, keywordsB[j]) {
				continue
			}
			candidates = append(candidates, j)
			titles = append(titles, b.Title)
		}

		CandidatesConsideredTotal.Add(float64(len(candidates)))
		if len(candidates) == 0 {
			continue
		}

		ranked := m.ranker.rank(a.Title, titles)
		if len(ranked) == 0 {
			continue
		}

		best := ranked[0]
		matched := listB[candidates[best.Index]]

		// exact means the titles are identical; anything the ranker had to
		// score, however close, is fuzzy.
		method := types.MatchFuzzy
		if a.Title == matched.Title {
			method = types.MatchExact
		}

		matches = append(matches, types.MarketMatch{
			MarketA:   *a,
			MarketB:   matched,
			Score:     confidence(best.Distance),
			MatchedBy: method,
		})
	}

	MatchesFoundTotal.Add(float64(len(matches)))
	MatchDurationSeconds.Observe(time.Since(start).Seconds())
	m.logger.Debug("matching-completed",
		zap.Int("list-a", len(listA)),
		zap.Int("list-b", len(listB)),
		zap.Int("matches", len(matches)))

	return matches
}

// prefilter applies the cheap rejection steps: distinct platforms, date
// proximity (only when both markets carry an end date), at least one shared
// keyword, and equal outcome cardinality.
func (m *Matcher) prefilter(a *types.StandardMarket, kwA []string, b *types.StandardMarket, kwB []string) bool {
	if a.Platform == b.Platform {
		return false
	}

	if a.EndDate != nil && b.EndDate != nil {
		diff := a.EndDate.Sub(*b.EndDate)
		if diff < 0 {
			diff = -diff
		}
		if diff > time.Duration(m.cfg.MaxDateDiffDays)*24*time.Hour {
			return false
		}
	}

	if !shareKeyword(kwA, kwB) {
		return false
	}

	return len(a.Outcomes) == len(b.Outcomes)
}
