// Package queue is the Redis-backed job queue driving the scan cadence.
//
// Jobs wait on a list, delayed retries sit in a sorted set scored by their
// ready time, and finished jobs are retained on capped lists (100
// completed, 50 failed). Recurring enrolments are in-process tickers keyed
// by platform pair; re-enrolling a pair replaces its previous cadence.
package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"arbscan/pkg/types"
)

// ScanJob asks for one scan of a platform pair.
type ScanJob struct {
	PlatformA types.Platform `json:"platformA"`
	PlatformB types.Platform `json:"platformB"`
	Limit     int            `json:"limit"`
}

// PairKey identifies the recurring enrolment slot for this pair.
func (j ScanJob) PairKey() string {
	return fmt.Sprintf("%s:%s", j.PlatformA, j.PlatformB)
}

// jobRecord is the payload stored in Redis for one enqueued job.
type jobRecord struct {
	ID         string    `json:"id"`
	Job        ScanJob   `json:"job"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Stats is a snapshot of queue depths.
type Stats struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Delayed   int64 `json:"delayed"`
}

const (
	waitingKey   = "arbscan:queue:scan:waiting"
	delayedKey   = "arbscan:queue:scan:delayed"
	completedKey = "arbscan:queue:scan:completed"
	failedKey    = "arbscan:queue:scan:failed"
	progressKey  = "arbscan:queue:scan:progress:"

	completedRetention = 100
	failedRetention    = 50
	retentionAge       = 24 * time.Hour
)

// Queue is the Redis-backed ScanJob queue.
type Queue struct {
	client *redis.Client
	logger *zap.Logger

	mu        sync.Mutex
	recurring map[string]chan struct{}
	active    atomic.Int64
	closed    atomic.Bool
	wg        sync.WaitGroup
}

// New creates a Queue on an existing Redis connection. The queue does not
// own the connection; closing the queue only stops recurring enrolments.
func New(client *redis.Client, logger *zap.Logger) *Queue {
	return &Queue{
		client:    client,
		logger:    logger,
		recurring: make(map[string]chan struct{}),
	}
}

// Enqueue adds a job to the waiting list and returns its id.
func (q *Queue) Enqueue(ctx context.Context, job ScanJob) (string, error) {
	rec := &jobRecord{
		ID:         uuid.New().String(),
		Job:        job,
		EnqueuedAt: time.Now().UTC(),
	}

	err := q.push(ctx, rec)
	if err != nil {
		return "", err
	}

	JobsEnqueuedTotal.Inc()
	q.logger.Debug("job-enqueued",
		zap.String("job-id", rec.ID),
		zap.String("pair", job.PairKey()))

	return rec.ID, nil
}

// EnqueueRecurring enqueues the job immediately and then on every interval.
// Any existing enrolment for the same platform pair is replaced.
func (q *Queue) EnqueueRecurring(ctx context.Context, job ScanJob, every time.Duration) error {
	_, err := q.Enqueue(ctx, job)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := job.PairKey()
	if stop, ok := q.recurring[key]; ok {
		close(stop)
	}

	stop := make(chan struct{})
	q.recurring[key] = stop

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, err := q.Enqueue(context.Background(), job)
				if err != nil {
					q.logger.Warn("recurring-enqueue-failed",
						zap.String("pair", key),
						zap.Error(err))
				}
			}
		}
	}()

	q.logger.Info("recurring-job-enrolled",
		zap.String("pair", key),
		zap.Duration("every", every))

	return nil
}

// Stats returns the current queue depths.
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	pipe := q.client.Pipeline()
	waiting := pipe.LLen(ctx, waitingKey)
	delayed := pipe.ZCard(ctx, delayedKey)
	completed := pipe.LLen(ctx, completedKey)
	failed := pipe.LLen(ctx, failedKey)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}

	return Stats{
		Waiting:   waiting.Val(),
		Active:    q.active.Load(),
		Completed: completed.Val(),
		Failed:    failed.Val(),
		Delayed:   delayed.Val(),
	}, nil
}

// Drain removes all waiting and delayed jobs.
func (q *Queue) Drain(ctx context.Context) error {
	err := q.client.Del(ctx, waitingKey, delayedKey).Err()
	if err != nil {
		return fmt.Errorf("queue drain: %w", err)
	}

	q.logger.Info("queue-drained")
	return nil
}

// Close stops all recurring enrolments. In-flight Redis state is left
// intact for the next process.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}

	q.mu.Lock()
	for key, stop := range q.recurring {
		close(stop)
		delete(q.recurring, key)
	}
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue-closed")
	return nil
}

func (q *Queue) push(ctx context.Context, rec *jobRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	err = q.client.LPush(ctx, waitingKey, payload).Err()
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}

	return nil
}

// retryLater schedules a job for re-execution after delay.
func (q *Queue) retryLater(ctx context.Context, rec *jobRecord, delay time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	readyAt := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, delayedKey, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("delay job: %w", err)
	}

	JobsRetriedTotal.Inc()
	return nil
}

// promoteDue moves delayed jobs whose ready time has passed back onto the
// waiting list.
func (q *Queue) promoteDue(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	due, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("promote due: %w", err)
	}

	for _, payload := range due {
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, delayedKey, payload)
		pipe.LPush(ctx, waitingKey, payload)
		_, err = pipe.Exec(ctx)
		if err != nil {
			return fmt.Errorf("promote job: %w", err)
		}
	}

	return nil
}

// pop blocks up to timeout for the next waiting job.
func (q *Queue) pop(ctx context.Context, timeout time.Duration) (*jobRecord, error) {
	vals, err := q.client.BRPop(ctx, timeout, waitingKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop job: %w", err)
	}

	var rec jobRecord
	err = json.Unmarshal([]byte(vals[1]), &rec)
	if err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}

	return &rec, nil
}

// markCompleted retains the finished job on the capped completed list.
func (q *Queue) markCompleted(ctx context.Context, rec *jobRecord) {
	rec.FinishedAt = time.Now().UTC()
	q.retain(ctx, completedKey, rec, completedRetention)
}

// markFailed retains the exhausted job on the capped failed list.
func (q *Queue) markFailed(ctx context.Context, rec *jobRecord, reason string) {
	rec.FinishedAt = time.Now().UTC()
	rec.Error = reason
	q.retain(ctx, failedKey, rec, failedRetention)
}

func (q *Queue) retain(ctx context.Context, key string, rec *jobRecord, limit int64) {
	payload, err := json.Marshal(rec)
	if err != nil {
		q.logger.Warn("job-retention-marshal-failed", zap.Error(err))
		return
	}

	pipe := q.client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, limit-1)
	pipe.Expire(ctx, key, retentionAge)
	_, err = pipe.Exec(ctx)
	if err != nil {
		q.logger.Warn("job-retention-failed", zap.Error(err))
	}
}

// setProgress records a job's progress milestone.
func (q *Queue) setProgress(ctx context.Context, jobID string, pct int) {
	err := q.client.Set(ctx, progressKey+jobID, pct, time.Hour).Err()
	if err != nil {
		q.logger.Debug("job-progress-write-failed",
			zap.String("job-id", jobID),
			zap.Error(err))
	}
}

// Progress reads a job's last reported milestone; -1 when unknown.
func (q *Queue) Progress(ctx context.Context, jobID string) (int, error) {
	pct, err := q.client.Get(ctx, progressKey+jobID).Int()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("read progress: %w", err)
	}
	return pct, nil
}
