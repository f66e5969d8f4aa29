package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"link-checker/internal/domain"
	"link-checker/internal/interfaces"
)

// Pool is a fixed set of validation workers fed through a jobs channel.
type Pool struct {
	workers []*worker
	jobs    chan linkJob
	logger  *zap.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	closed  bool
}

func NewPool(
	size int,
	results chan<- event,
	validator interfaces.LinkValidator,
	delay time.Duration,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Pool {
	if size < 1 {
		size = 1
	}

	jobs := make(chan linkJob, size*2)
	workers := make([]*worker, size)
	for i := 0; i < size; i++ {
		workers[i] = newWorker(i, jobs, results, validator, delay, metrics, logger)
	}

	return &Pool{
		workers: workers,
		jobs:    jobs,
		logger:  logger.With(zap.String("component", "pool")),
	}
}

// Start launches the workers. ctx is handed to every validation.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.start(ctx)
		}(w)
	}

	p.logger.Debug("worker pool started",
		zap.Int("worker_count", len(p.workers)),
		zap.Int("job_buffer_size", cap(p.jobs)))
}

// Submit queues a job, giving up when ctx is cancelled first.
func (p *Pool) Submit(ctx context.Context, job linkJob) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops accepting jobs and waits for queued and in-flight jobs to
// finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped")
}
