package worker

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"link-checker/internal/domain"
	"link-checker/internal/interfaces"
)

const reasonInternal = "internal_error"

type linkJob struct {
	seed int
	link domain.ExtractedLink
}

type eventKind int

const (
	eventOutcome eventKind = iota
	eventPage
)

// event is the only thing workers and page tasks hand to the aggregator.
type event struct {
	kind     eventKind
	seed     int
	link     domain.ExtractedLink
	outcome  domain.ValidationOutcome
	duration time.Duration
	failure  *domain.PageFailure
}

// worker validates links from the shared jobs channel until it is closed.
type worker struct {
	id        int
	jobs      <-chan linkJob
	results   chan<- event
	validator interfaces.LinkValidator
	delay     time.Duration
	metrics   domain.MetricsCollector
	logger    *zap.Logger
}

func newWorker(
	id int,
	jobs <-chan linkJob,
	results chan<- event,
	validator interfaces.LinkValidator,
	delay time.Duration,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *worker {
	return &worker{
		id:        id,
		jobs:      jobs,
		results:   results,
		validator: validator,
		delay:     delay,
		metrics:   metrics,
		logger:    logger.With(zap.Int("worker_id", id)),
	}
}

func (w *worker) start(ctx context.Context) {
	id := strconv.Itoa(w.id)
	w.metrics.RecordWorkerStart(id)
	defer w.metrics.RecordWorkerStop(id)

	w.logger.Debug("worker started")
	defer w.logger.Debug("worker stopped")

	for job := range w.jobs {
		w.results <- w.process(ctx, job)
		w.pause(ctx)
	}
}

// process validates one link. A panicking validator still produces exactly
// one outcome for the link.
func (w *worker) process(ctx context.Context, job linkJob) (ev event) {
	start := time.Now()
	ev = event{kind: eventOutcome, seed: job.seed, link: job.link}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panic recovered",
				zap.String("url", job.link.LinkURL),
				zap.Any("panic", r),
				zap.Stack("stack"))
			ev.outcome = domain.ValidationOutcome{
				RequestedURL: job.link.LinkURL,
				ErrorDetail:  reasonInternal,
			}
		}
		ev.duration = time.Since(start)
	}()

	ev.outcome = w.validator.Validate(ctx, job.link.LinkURL)
	return ev
}

// pause spaces out consecutive probes issued by this worker.
func (w *worker) pause(ctx context.Context) {
	if w.delay <= 0 {
		return
	}
	t := time.NewTimer(w.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
