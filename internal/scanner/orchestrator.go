// Package scanner composes one scan: fetch both platforms in parallel,
// match, calculate, cache, alert.
package scanner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arbscan/internal/adapters"
	"arbscan/internal/alerts"
	"arbscan/internal/arbitrage"
	"arbscan/internal/matching"
	"arbscan/pkg/cache"
	"arbscan/pkg/types"
)

// Result summarizes one completed scan.
type Result struct {
	Timestamp      time.Time               `json:"timestamp"`
	Opportunities  []arbitrage.Opportunity `json:"opportunities"`
	MarketsScanned map[types.Platform]int  `json:"marketsScanned"`
	MatchesFound   int                     `json:"matchesFound"`
	DurationMs     int64                   `json:"durationMs"`
}

// Progress milestones reported while a scan executes.
const (
	ProgressFetchBegun   = 10
	ProgressFetchDone    = 40
	ProgressMatchDone    = 70
	ProgressArbComputed  = 90
	ProgressAlertsIssued = 100
)

// Orchestrator runs the fetch → match → calculate → alert pipeline for one
// platform pair.
type Orchestrator struct {
	adapters   adapters.Registry
	matcher    *matching.Matcher
	calculator *arbitrage.Calculator
	dispatcher *alerts.Dispatcher
	cache      cache.Cache
	logger     *zap.Logger
}

// New creates an Orchestrator.
func New(
	registry adapters.Registry,
	matcher *matching.Matcher,
	calculator *arbitrage.Calculator,
	dispatcher *alerts.Dispatcher,
	store cache.Cache,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		adapters:   registry,
		matcher:    matcher,
		calculator: calculator,
		dispatcher: dispatcher,
		cache:      store,
		logger:     logger,
	}
}

// Scan executes one full pass for the (platformA, platformB) pair.
// progress, when non-nil, receives the milestone percentages in order.
func (o *Orchestrator) Scan(
	ctx context.Context,
	platformA, platformB types.Platform,
	limit int,
	progress func(int),
) (*Result, error) {
	start := time.Now()
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}

	report(ProgressFetchBegun)

	var marketsA, marketsB []types.StandardMarket
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		marketsA, err = o.resolveMarkets(gctx, platformA, limit)
		return err
	})
	g.Go(func() error {
		var err error
		marketsB, err = o.resolveMarkets(gctx, platformB, limit)
		return err
	})
	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	report(ProgressFetchDone)

	matches := o.matcher.FindMatches(marketsA, marketsB)
	report(ProgressMatchDone)

	opportunities := o.calculator.FindArbitrage(matches)
	report(ProgressArbComputed)

	result := &Result{
		Timestamp:     start.UTC(),
		Opportunities: opportunities,
		MarketsScanned: map[types.Platform]int{
			platformA: len(marketsA),
			platformB: len(marketsB),
		},
		MatchesFound: len(matches),
		DurationMs:   time.Since(start).Milliseconds(),
	}

	o.storeResults(ctx, result)
	o.alert(ctx, opportunities)
	report(ProgressAlertsIssued)

	ScansCompletedTotal.Inc()
	ScanDurationSeconds.Observe(time.Since(start).Seconds())
	o.logger.Info("scan-completed",
		zap.String("platform-a", string(platformA)),
		zap.String("platform-b", string(platformB)),
		zap.Int("markets-a", len(marketsA)),
		zap.Int("markets-b", len(marketsB)),
		zap.Int("matches", len(matches)),
		zap.Int("opportunities", len(opportunities)),
		zap.Int64("duration-ms", result.DurationMs))

	return result, nil
}

// resolveMarkets is the cache-read-through for one platform's snapshot.
// Cache errors degrade to misses; write failures are best-effort.
func (o *Orchestrator) resolveMarkets(ctx context.Context, platform types.Platform, limit int) ([]types.StandardMarket, error) {
	adapter, ok := o.adapters.Get(platform)
	if !ok {
		return nil, fmt.Errorf("no adapter for platform %q", platform)
	}

	key := cache.MarketsKey(platform)

	var cached []types.StandardMarket
	hit, err := cache.GetJSON(ctx, o.cache, key, &cached)
	if err != nil {
		o.logger.Warn("market-cache-read-failed",
			zap.String("platform", string(platform)),
			zap.Error(err))
	}
	if hit && len(cached) > 0 {
		return cached, nil
	}

	markets, err := adapter.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}

	err = cache.SetJSON(ctx, o.cache, key, markets, cache.MarketsTTL)
	if err != nil {
		o.logger.Warn("market-cache-write-failed",
			zap.String("platform", string(platform)),
			zap.Error(err))
	}

	return markets, nil
}

func (o *Orchestrator) storeResults(ctx context.Context, result *Result) {
	err := cache.SetJSON(ctx, o.cache, cache.OpportunitiesLatestKey, result.Opportunities, cache.OpportunitiesTTL)
	if err != nil {
		o.logger.Warn("opportunities-cache-write-failed", zap.Error(err))
	}

	key := cache.ScanResultsKey(result.Timestamp.UnixMilli())
	err = cache.SetJSON(ctx, o.cache, key, result, cache.ScanResultsTTL)
	if err != nil {
		o.logger.Warn("scan-results-cache-write-failed", zap.Error(err))
	}
}

func (o *Orchestrator) alert(ctx context.Context, opportunities []arbitrage.Opportunity) {
	if !o.dispatcher.Enabled() {
		return
	}

	eligible := make([]arbitrage.Opportunity, 0, len(opportunities))
	for i := range opportunities {
		if o.dispatcher.MeetsThreshold(&opportunities[i]) {
			eligible = append(eligible, opportunities[i])
		}
	}

	o.dispatcher.SendMany(ctx, eligible)
}
