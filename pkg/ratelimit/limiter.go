// Package ratelimit paces outbound requests per platform.
//
// Each platform gets three independent constraints: a concurrency cap, a
// minimum interval between admitted starts, and a reservoir token bucket
// that refills in discrete steps. Acquire blocks until all three are
// satisfied; waiters are admitted strictly FIFO so no caller starves.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"arbscan/pkg/types"
)

// Reservoir is the token-bucket configuration governing burst rate.
type Reservoir struct {
	Capacity       int
	RefillAmount   int
	RefillInterval time.Duration
}

// PlatformLimit holds one platform's pacing configuration.
type PlatformLimit struct {
	MaxConcurrent int
	MinInterval   time.Duration
	Reservoir     Reservoir
}

// DefaultLimits returns the reference pacing table.
func DefaultLimits() map[types.Platform]PlatformLimit {
	return map[types.Platform]PlatformLimit{
		types.PlatformPolymarket: {
			MaxConcurrent: 5,
			MinInterval:   100 * time.Millisecond,
			Reservoir:     Reservoir{Capacity: 50, RefillAmount: 50, RefillInterval: 5 * time.Second},
		},
		types.PlatformManifold: {
			MaxConcurrent: 3,
			MinInterval:   200 * time.Millisecond,
			Reservoir:     Reservoir{Capacity: 25, RefillAmount: 25, RefillInterval: 5 * time.Second},
		},
		types.PlatformKalshi: {
			MaxConcurrent: 2,
			MinInterval:   500 * time.Millisecond,
			Reservoir:     Reservoir{Capacity: 10, RefillAmount: 10, RefillInterval: 5 * time.Second},
		},
	}
}

// Limiter paces requests for every configured platform.
type Limiter struct {
	limiters map[types.Platform]*platformLimiter
	logger   *zap.Logger
}

// New creates a Limiter from per-platform configuration.
func New(limits map[types.Platform]PlatformLimit, logger *zap.Logger) *Limiter {
	limiters := make(map[types.Platform]*platformLimiter, len(limits))
	for platform, limit := range limits {
		limiters[platform] = &platformLimiter{
			platform:   platform,
			cfg:        limit,
			tokens:     limit.Reservoir.Capacity,
			lastRefill: time.Now(),
			logger:     logger,
		}
	}

	return &Limiter{limiters: limiters, logger: logger}
}

// Acquire blocks until a concurrency slot and a reservoir token are held
// and the platform's minimum interval since the last admitted start has
// elapsed. Callers must pair every successful Acquire with Release.
func (l *Limiter) Acquire(ctx context.Context, platform types.Platform) error {
	pl, ok := l.limiters[platform]
	if !ok {
		// Unconfigured platforms are not paced.
		return nil
	}
	return pl.acquire(ctx)
}

// Release frees the concurrency slot taken by Acquire.
func (l *Limiter) Release(platform types.Platform) {
	pl, ok := l.limiters[platform]
	if !ok {
		return
	}
	pl.release()
}

// Do runs fn under the platform's pacing constraints.
func (l *Limiter) Do(ctx context.Context, platform types.Platform, fn func() error) error {
	err := l.Acquire(ctx, platform)
	if err != nil {
		return err
	}
	defer l.Release(platform)

	return fn()
}

type platformLimiter struct {
	platform types.Platform
	cfg      PlatformLimit
	logger   *zap.Logger

	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
	lastStart  time.Time
	inFlight   int
	waiters    []chan struct{}
}

func (p *platformLimiter) acquire(ctx context.Context) error {
	ch := make(chan struct{}, 1)

	p.mu.Lock()
	now := time.Now()
	p.refillLocked(now)

	if len(p.waiters) == 0 && p.admissibleLocked(now) {
		p.admitLocked(now)
		p.mu.Unlock()
		return nil
	}

	if p.tokens == 0 {
		ReservoirDepletedTotal.WithLabelValues(string(p.platform)).Inc()
		p.logger.Debug("rate-limit-depleted", zap.String("platform", string(p.platform)))
	}
	p.waiters = append(p.waiters, ch)
	WaitersQueuedTotal.WithLabelValues(string(p.platform)).Inc()
	p.logger.Debug("rate-limit-queued",
		zap.String("platform", string(p.platform)),
		zap.Int("queue-depth", len(p.waiters)))

	for {
		wait := p.nextWaitLocked(now)
		p.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.removeWaiter(ch)
			return ctx.Err()
		case <-ch:
			timer.Stop()
		case <-timer.C:
		}

		p.mu.Lock()
		now = time.Now()
		p.refillLocked(now)

		if len(p.waiters) > 0 && p.waiters[0] == ch && p.admissibleLocked(now) {
			p.waiters = p.waiters[1:]
			p.admitLocked(now)
			p.notifyHeadLocked()
			p.mu.Unlock()
			return nil
		}
	}
}

func (p *platformLimiter) release() {
	p.mu.Lock()
	if p.inFlight > 0 {
		p.inFlight--
	}
	p.notifyHeadLocked()
	p.mu.Unlock()
}

// refillLocked adds whole refill steps that have elapsed since lastRefill.
func (p *platformLimiter) refillLocked(now time.Time) {
	r := p.cfg.Reservoir
	if r.RefillInterval <= 0 {
		return
	}

	steps := int(now.Sub(p.lastRefill) / r.RefillInterval)
	if steps <= 0 {
		return
	}

	p.tokens += steps * r.RefillAmount
	if p.tokens > r.Capacity {
		p.tokens = r.Capacity
	}
	p.lastRefill = p.lastRefill.Add(time.Duration(steps) * r.RefillInterval)
}

func (p *platformLimiter) admissibleLocked(now time.Time) bool {
	if p.inFlight >= p.cfg.MaxConcurrent {
		return false
	}
	if p.tokens < 1 {
		return false
	}
	if !p.lastStart.IsZero() && now.Sub(p.lastStart) < p.cfg.MinInterval {
		return false
	}
	return true
}

func (p *platformLimiter) admitLocked(now time.Time) {
	p.tokens--
	p.inFlight++
	p.lastStart = now
}

// nextWaitLocked estimates when the head waiter should re-check. Concurrency
// releases arrive via notify, so the fallback only covers timed constraints.
func (p *platformLimiter) nextWaitLocked(now time.Time) time.Duration {
	wait := 500 * time.Millisecond

	if p.tokens < 1 && p.cfg.Reservoir.RefillInterval > 0 {
		if d := p.lastRefill.Add(p.cfg.Reservoir.RefillInterval).Sub(now); d < wait {
			wait = d
		}
	}
	if !p.lastStart.IsZero() {
		if d := p.lastStart.Add(p.cfg.MinInterval).Sub(now); d > 0 && d < wait {
			wait = d
		}
	}
	if wait < time.Millisecond {
		wait = time.Millisecond
	}

	return wait
}

func (p *platformLimiter) notifyHeadLocked() {
	if len(p.waiters) == 0 {
		return
	}
	select {
	case p.waiters[0] <- struct{}{}:
	default:
	}
}

func (p *platformLimiter) removeWaiter(ch chan struct{}) {
	p.mu.Lock()
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			break
		}
	}
	p.notifyHeadLocked()
	p.mu.Unlock()
}
