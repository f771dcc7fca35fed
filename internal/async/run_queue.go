package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-desk/internal/common"
)

type RunQueue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  CompletionFunc

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*RunQueue)

func WithWorkers(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(q *RunQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithCompletion(fn CompletionFunc) Option {
	return func(q *RunQueue) { q.onDone = fn }
}

func NewRunQueue(r Runner, logger *slog.Logger, opts ...Option) *RunQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RunQueue{
		runner:  r,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RunQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.process(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *RunQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	res, err := q.runner.Run(ctx, job.Input)
	attrs := []any{
		"worker_id", workerID,
		"job_id", job.ID,
		"source", job.Source,
		"run_id", res.RunID,
		"wait_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		q.logger.Error("queue.job.failed", append(attrs, "error", err, "kind", common.KindOf(err))...)
	} else {
		q.logger.Info("queue.job.ok", append(attrs, "integrity", res.Integrity.Index)...)
	}
	if q.onDone != nil {
		q.onDone(ctx, job, res, err)
	}
}

// Enqueue hands a job to the pool. A full queue applies backpressure until a
// slot frees up or ctx is done. Missing ID and SubmittedAt are filled in.
func (q *RunQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "job_id", job.ID, "source", job.Source)
		return ErrClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue.ok", "job_id", job.ID, "source", job.Source, "mode", job.Input.Mode)
		return nil
	default:
	}
	q.logger.Warn("queue.enqueue.backpressure", "job_id", job.ID, "source", job.Source)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued and running jobs to
// finish, or for ctx to be done.
func (q *RunQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		q.logger.Info("queue.shutdown.drained")
		return nil
	}
}
