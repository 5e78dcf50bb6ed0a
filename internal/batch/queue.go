package batch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Task is one document waiting for a worker.
type Task struct {
	Path        string
	SubmittedAt time.Time
}

// Outcome is the terminal state of one task. Exactly one of Result and Err
// is set.
type Outcome struct {
	Path   string
	Result *Result
	Err    error

	seq int
}

type queued struct {
	Task
	seq int
}

// Queue fans tasks out to a fixed pool of workers, each running the shared
// processor, and keeps every outcome for the summary.
type Queue struct {
	proc    *Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan queued
	wg   sync.WaitGroup
	once sync.Once

	// mu guards the queue lifecycle; outMu guards outcomes. Workers only
	// touch outMu, so Enqueue may block on a full channel while holding mu
	// without starving the drain.
	mu     sync.Mutex
	closed bool
	next   int

	outMu    sync.Mutex
	outcomes []Outcome
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan queued, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan queued, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for t := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					res, err := q.proc.ProcessFile(ctx, t.Path)
					cancel()

					q.record(Outcome{Path: t.Path, Result: res, Err: err, seq: t.seq})
					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "path", t.Path, "error", err)
					} else {
						q.logger.Info("processed file successfully", "worker_id", workerID, "path", t.Path)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands a task to the pool. The channel is only closed while the
// mutex is held, so sending under the same mutex cannot hit a closed
// channel.
func (q *Queue) Enqueue(_ context.Context, task Task) error {
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", task.Path)
		return nil
	}
	item := queued{Task: task, seq: q.next}
	q.next++

	select {
	case q.ch <- item:
		q.logger.Debug("queued file for processing", "path", task.Path)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", task.Path)
		q.ch <- item
	}
	return nil
}

// Shutdown stops accepting tasks and waits for the workers to drain, or for
// ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// Outcomes returns every finished task in enqueue order. Call it after
// Shutdown; outcomes recorded later are included on the next call.
func (q *Queue) Outcomes() []Outcome {
	q.outMu.Lock()
	defer q.outMu.Unlock()
	out := make([]Outcome, len(q.outcomes))
	copy(out, q.outcomes)
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (q *Queue) record(o Outcome) {
	q.outMu.Lock()
	q.outcomes = append(q.outcomes, o)
	q.outMu.Unlock()
}
