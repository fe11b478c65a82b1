package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"arbscan/pkg/types"
)

func limitsFor(platform types.Platform, limit PlatformLimit) map[types.Platform]PlatformLimit {
	return map[types.Platform]PlatformLimit{platform: limit}
}

func TestMinIntervalWallTime(t *testing.T) {
	const k = 4
	interval := 30 * time.Millisecond

	l := New(limitsFor(types.PlatformKalshi, PlatformLimit{
		MaxConcurrent: 1,
		MinInterval:   interval,
		Reservoir:     Reservoir{Capacity: 100, RefillAmount: 100, RefillInterval: time.Second},
	}), zap.NewNop())

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < k; i++ {
		err := l.Do(ctx, types.PlatformKalshi, func() error { return nil })
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}

	elapsed := time.Since(start)
	want := time.Duration(k-1) * interval
	if elapsed < want {
		t.Errorf("k back-to-back calls took %s, want at least %s", elapsed, want)
	}
}

func TestMaxConcurrent(t *testing.T) {
	l := New(limitsFor(types.PlatformPolymarket, PlatformLimit{
		MaxConcurrent: 2,
		MinInterval:   0,
		Reservoir:     Reservoir{Capacity: 100, RefillAmount: 100, RefillInterval: time.Second},
	}), zap.NewNop())

	ctx := context.Background()
	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(ctx, types.PlatformPolymarket, func() error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak.Load())
	}
}

func TestReservoirBlocksUntilRefill(t *testing.T) {
	refill := 60 * time.Millisecond

	l := New(limitsFor(types.PlatformManifold, PlatformLimit{
		MaxConcurrent: 5,
		MinInterval:   0,
		Reservoir:     Reservoir{Capacity: 2, RefillAmount: 2, RefillInterval: refill},
	}), zap.NewNop())

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		err := l.Do(ctx, types.PlatformManifold, func() error { return nil })
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}

	// The third call exceeds capacity and must wait for a refill step.
	if elapsed := time.Since(start); elapsed < refill {
		t.Errorf("third call returned after %s, want at least %s", elapsed, refill)
	}
}

func TestAcquireCancellation(t *testing.T) {
	l := New(limitsFor(types.PlatformKalshi, PlatformLimit{
		MaxConcurrent: 1,
		MinInterval:   0,
		Reservoir:     Reservoir{Capacity: 1, RefillAmount: 1, RefillInterval: time.Hour},
	}), zap.NewNop())

	ctx := context.Background()
	if err := l.Acquire(ctx, types.PlatformKalshi); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()

	err := l.Acquire(cancelCtx, types.PlatformKalshi)
	if err == nil {
		l.Release(types.PlatformKalshi)
		t.Fatal("second Acquire() must block until cancelled")
	}

	l.Release(types.PlatformKalshi)
}

func TestUnconfiguredPlatformUnpaced(t *testing.T) {
	l := New(map[types.Platform]PlatformLimit{}, zap.NewNop())

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := l.Acquire(context.Background(), types.PlatformPolymarket); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		l.Release(types.PlatformPolymarket)
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unconfigured platform was paced: %s", elapsed)
	}
}

func TestFIFOAdmission(t *testing.T) {
	l := New(limitsFor(types.PlatformManifold, PlatformLimit{
		MaxConcurrent: 1,
		MinInterval:   10 * time.Millisecond,
		Reservoir:     Reservoir{Capacity: 100, RefillAmount: 100, RefillInterval: time.Second},
	}), zap.NewNop())

	ctx := context.Background()
	if err := l.Acquire(ctx, types.PlatformManifold); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Stagger enqueue so the waiter queue order is deterministic.
			time.Sleep(time.Duration(n) * 20 * time.Millisecond)
			if err := l.Acquire(ctx, types.PlatformManifold); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			l.Release(types.PlatformManifold)
		}(i)
	}

	time.Sleep(150 * time.Millisecond)
	l.Release(types.PlatformManifold)
	wg.Wait()

	for i, n := range order {
		if n != i {
			t.Fatalf("admission order = %v, want FIFO", order)
		}
	}
}
