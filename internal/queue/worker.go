package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler executes one scan job. progress receives milestone percentages
// while the job runs.
type Handler func(ctx context.Context, job ScanJob, progress func(int)) error

// WorkerConfig holds worker configuration.
type WorkerConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnCompleted    func(jobID string)
	OnFailed       func(jobID string, reason string)
	Logger         *zap.Logger
}

// popTimeout bounds each blocking pop so the worker can promote delayed
// jobs and observe shutdown between waits.
const popTimeout = time.Second

// Worker drains the queue with single-job concurrency so scans for the
// same pair never overlap.
type Worker struct {
	queue   *Queue
	handler Handler
	cfg     WorkerConfig
	logger  *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a Worker. Zero config fields fall back to three
// attempts with a two second initial backoff.
func NewWorker(q *Queue, handler Handler, cfg WorkerConfig) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}

	return &Worker{
		queue:   q,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// Start launches the worker loop. It runs until Close is called or the
// context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go w.loop(ctx)

	w.logger.Info("worker-started",
		zap.Int("max-attempts", w.cfg.MaxAttempts),
		zap.Duration("initial-backoff", w.cfg.InitialBackoff))
}

// Close stops the worker and waits for the in-flight job to finish.
func (w *Worker) Close() error {
	if w.cancel == nil {
		return nil
	}

	w.cancel()
	<-w.done
	w.logger.Info("worker-stopped")
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	for {
		if ctx.Err() != nil {
			return
		}

		err := w.queue.promoteDue(ctx)
		if err != nil && ctx.Err() == nil {
			w.logger.Warn("delayed-promotion-failed", zap.Error(err))
		}

		rec, err := w.queue.pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("job-pop-failed", zap.Error(err))
			time.Sleep(popTimeout)
			continue
		}
		if rec == nil {
			continue
		}

		w.process(ctx, rec)
	}
}

func (w *Worker) process(ctx context.Context, rec *jobRecord) {
	w.queue.active.Add(1)
	defer w.queue.active.Add(-1)

	rec.Attempts++
	start := time.Now()

	progress := func(pct int) {
		w.queue.setProgress(ctx, rec.ID, pct)
	}

	err := w.handler(ctx, rec.Job, progress)
	JobDurationSeconds.Observe(time.Since(start).Seconds())

	if err == nil {
		w.queue.markCompleted(ctx, rec)
		JobsCompletedTotal.Inc()
		w.logger.Info("job-completed",
			zap.String("job-id", rec.ID),
			zap.String("pair", rec.Job.PairKey()),
			zap.Int("attempts", rec.Attempts))
		if w.cfg.OnCompleted != nil {
			w.cfg.OnCompleted(rec.ID)
		}
		return
	}

	if ctx.Err() != nil {
		// Shutdown interrupted the attempt; requeue without burning the
		// retry budget.
		rec.Attempts--
		requeueErr := w.queue.push(context.Background(), rec)
		if requeueErr != nil {
			w.logger.Warn("job-requeue-failed",
				zap.String("job-id", rec.ID),
				zap.Error(requeueErr))
		}
		return
	}

	if rec.Attempts < w.cfg.MaxAttempts {
		delay := w.cfg.InitialBackoff << (rec.Attempts - 1)
		w.logger.Warn("job-attempt-failed",
			zap.String("job-id", rec.ID),
			zap.String("pair", rec.Job.PairKey()),
			zap.Int("attempt", rec.Attempts),
			zap.Duration("retry-in", delay),
			zap.Error(err))

		retryErr := w.queue.retryLater(ctx, rec, delay)
		if retryErr != nil {
			w.logger.Error("job-retry-schedule-failed",
				zap.String("job-id", rec.ID),
				zap.Error(retryErr))
		}
		return
	}

	w.queue.markFailed(ctx, rec, err.Error())
	JobsFailedTotal.Inc()
	w.logger.Error("job-failed",
		zap.String("job-id", rec.ID),
		zap.String("pair", rec.Job.PairKey()),
		zap.Int("attempts", rec.Attempts),
		zap.Error(err))
	if w.cfg.OnFailed != nil {
		w.cfg.OnFailed(rec.ID, err.Error())
	}
}
