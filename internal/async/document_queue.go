package async

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// Completed is a finished job and its report.
type Completed struct {
	Job      Job
	Report   entity.ExtractionReport
	Duration time.Duration
}

type DocumentQueue struct {
	ext     Extractor
	base    context.Context
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	resMu sync.Mutex
	done  []Completed
}

type Option func(*DocumentQueue)

func WithWorkers(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *DocumentQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewDocumentQueue starts the workers. Every job runs under ctx with the
// per-document timeout.
func NewDocumentQueue(ctx context.Context, ext Extractor, logger *slog.Logger, opts ...Option) *DocumentQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &DocumentQueue{
		ext:     ext,
		base:    ctx,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *DocumentQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("async.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *DocumentQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(common.WithDocument(q.base, job.Document.Path), q.timeout)
	defer cancel()

	start := time.Now()
	rep := q.ext.Run(ctx, job.Document)
	c := Completed{Job: job, Report: rep, Duration: time.Since(start)}

	if failed := rep.Failed(); len(rep.Outcomes) > 0 && len(failed) == len(rep.Outcomes) {
		q.logger.Warn("async.document.no_strategy_succeeded",
			"worker_id", workerID, "path", job.Document.Path, "duration", c.Duration)
	} else {
		q.logger.Info("async.document.done",
			"worker_id", workerID, "path", job.Document.Path,
			"failed_strategies", len(failed), "duration", c.Duration)
	}

	q.resMu.Lock()
	q.done = append(q.done, c)
	q.resMu.Unlock()
}

// Enqueue hands job to the workers, blocking while the buffer is full.
func (q *DocumentQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("async.enqueue.refused", "path", job.Document.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	defer q.mu.Unlock()
	select {
	case q.ch <- job:
		return nil
	default:
	}

	q.logger.Debug("async.enqueue.backpressure", "path", job.Document.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *DocumentQueue) Shutdown(ctx context.Context) error {
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
		q.logger.Warn("async.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		q.logger.Debug("async.shutdown.drained")
		return nil
	}
}

// Reports returns the finished jobs ordered by Seq.
func (q *DocumentQueue) Reports() []Completed {
	q.resMu.Lock()
	out := make([]Completed, len(q.done))
	copy(out, q.done)
	q.resMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Job.Seq < out[j].Job.Seq })
	return out
}
