// Package scheduler enrolls the recurring scan jobs and periodically logs
// queue depths.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"arbscan/internal/queue"
	"arbscan/pkg/cache"
	"arbscan/pkg/types"
)

// Config holds scheduler configuration.
type Config struct {
	ScanInterval  time.Duration
	StatsInterval time.Duration
	FetchLimit    int
	Cache         cache.Cache
	Logger        *zap.Logger
}

// pairs is the fixed set of cross-platform scans, ordered by historical
// liquidity of the pairing.
//
//nolint:gochecknoglobals
var pairs = [][2]types.Platform{
	{types.PlatformPolymarket, types.PlatformManifold},
	{types.PlatformKalshi, types.PlatformPolymarket},
	{types.PlatformKalshi, types.PlatformManifold},
}

// Scheduler owns the recurring enrolments and the stats reporter.
type Scheduler struct {
	queue  *queue.Queue
	store  cache.Cache
	cfg    Config
	logger *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Scheduler.
func New(q *queue.Queue, cfg Config) *Scheduler {
	return &Scheduler{
		queue:  q,
		store:  cfg.Cache,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Start enrolls every platform pair as a recurring job and launches the
// stats reporter.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, pair := range pairs {
		job := queue.ScanJob{
			PlatformA: pair[0],
			PlatformB: pair[1],
			Limit:     s.cfg.FetchLimit,
		}
		err := s.queue.EnqueueRecurring(ctx, job, s.cfg.ScanInterval)
		if err != nil {
			return fmt.Errorf("enroll %s: %w", job.PairKey(), err)
		}
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.reportStats(ctx)

	s.logger.Info("scheduler-started",
		zap.Duration("scan-interval", s.cfg.ScanInterval),
		zap.Duration("stats-interval", s.cfg.StatsInterval),
		zap.Int("pairs", len(pairs)))

	return nil
}

// Stop halts the stats reporter. Recurring enrolments are stopped by the
// queue's own Close.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.logger.Info("scheduler-stopped")
}

func (s *Scheduler) reportStats(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.queue.Stats(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("queue-stats-failed", zap.Error(err))
				}
				continue
			}

			cacheStats, err := s.store.Stats(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("cache-stats-failed", zap.Error(err))
				}
				continue
			}

			s.logger.Info("queue-stats",
				zap.Int64("waiting", stats.Waiting),
				zap.Int64("active", stats.Active),
				zap.Int64("completed", stats.Completed),
				zap.Int64("failed", stats.Failed),
				zap.Int64("delayed", stats.Delayed),
				zap.Int("cache-keys", cacheStats.Keys),
				zap.String("cache-memory", cacheStats.MemoryHuman))
		}
	}
}
