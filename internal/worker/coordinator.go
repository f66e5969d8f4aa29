package worker

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"link-checker/internal/classifier"
	"link-checker/internal/config"
	"link-checker/internal/domain"
	"link-checker/internal/interfaces"
)

type Options struct {
	// MaxWorkers bounds concurrently running link validations.
	MaxWorkers int
	// PageWorkers bounds concurrently extracted seed pages. Zero means the
	// same as MaxWorkers.
	PageWorkers int
	// PerLinkDelay is the pause a worker takes after each validation.
	PerLinkDelay time.Duration
	// MaxSeedURLs rejects larger runs up front. It cannot exceed
	// config.HardMaxSeedURLs.
	MaxSeedURLs int
	// OnProgress, when set, is called from a single goroutine after every
	// page and link completes.
	OnProgress func(domain.Progress)
}

// Coordinator runs extraction and validation over a set of seed pages and
// aggregates the findings into a report.
type Coordinator struct {
	extractor interfaces.PageExtractor
	validator interfaces.LinkValidator
	opts      Options
	metrics   domain.MetricsCollector
	logger    *zap.Logger

	pagesTotal atomic.Int64
	pagesDone  atomic.Int64
	linksTotal atomic.Int64
	linksDone  atomic.Int64
}

func NewCoordinator(
	extractor interfaces.PageExtractor,
	validator interfaces.LinkValidator,
	opts Options,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Coordinator {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.PageWorkers < 1 {
		opts.PageWorkers = opts.MaxWorkers
	}
	if opts.MaxSeedURLs <= 0 || opts.MaxSeedURLs > config.HardMaxSeedURLs {
		opts.MaxSeedURLs = config.HardMaxSeedURLs
	}
	return &Coordinator{
		extractor: extractor,
		validator: validator,
		opts:      opts,
		metrics:   metrics,
		logger:    logger.With(zap.String("component", "coordinator")),
	}
}

// Progress returns a snapshot of the current or last run.
func (c *Coordinator) Progress() domain.Progress {
	return domain.Progress{
		PagesTotal: int(c.pagesTotal.Load()),
		PagesDone:  int(c.pagesDone.Load()),
		LinksTotal: int(c.linksTotal.Load()),
		LinksDone:  int(c.linksDone.Load()),
	}
}

// Run checks every link on every seed page. Per-page and per-link failures
// are recorded in the report; only invalid input fails the run before it
// starts. When ctx is cancelled the report gathered so far is returned along
// with the cancellation error.
func (c *Coordinator) Run(ctx context.Context, seeds []domain.SeedPage) (*domain.Report, error) {
	if len(seeds) == 0 {
		return nil, domain.NewInputError("at least one seed URL is required", nil)
	}
	if len(seeds) > c.opts.MaxSeedURLs {
		return nil, domain.NewInputError(
			fmt.Sprintf("too many seed URLs: %d given, at most %d allowed", len(seeds), c.opts.MaxSeedURLs), nil)
	}

	// Report order follows the slice, whatever indexes the caller assigned.
	ordered := make([]domain.SeedPage, len(seeds))
	for i, s := range seeds {
		ordered[i] = domain.SeedPage{Index: i, URL: s.URL}
	}
	seeds = ordered

	started := time.Now()
	c.pagesTotal.Store(int64(len(seeds)))
	c.pagesDone.Store(0)
	c.linksTotal.Store(0)
	c.linksDone.Store(0)

	c.logger.Info("starting check",
		zap.Int("seeds", len(seeds)),
		zap.Int("max_workers", c.opts.MaxWorkers),
		zap.Int("page_workers", min(c.opts.PageWorkers, len(seeds))),
		zap.Duration("per_link_delay", c.opts.PerLinkDelay))

	// In-flight probes run to their own timeout even after ctx is cancelled.
	probeCtx := context.WithoutCancel(ctx)

	events := make(chan event, c.opts.MaxWorkers)
	agg := newAggregator(seeds)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for ev := range events {
			c.handle(agg, ev)
		}
	}()

	pool := NewPool(c.opts.MaxWorkers, events, c.validator, c.opts.PerLinkDelay, c.metrics, c.logger)
	pool.Start(probeCtx)

	c.schedulePages(ctx, probeCtx, seeds, pool, events)
	pool.Close()
	close(events)
	<-aggregated

	report := agg.report()
	report.StartedAt = started
	report.Duration = time.Since(started)

	c.logger.Info("check finished",
		zap.Int("pages", report.Pages),
		zap.Int("links", report.Links),
		zap.Int("issues", report.Summary.Total),
		zap.Int("page_failures", len(report.PageFailures)),
		zap.Duration("duration", report.Duration))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("check interrupted: %w", err)
	}
	return report, nil
}

// handle runs on the aggregator goroutine only.
func (c *Coordinator) handle(agg *aggregator, ev event) {
	switch ev.kind {
	case eventOutcome:
		issue := agg.addOutcome(ev)
		c.metrics.RecordCheck(ev.outcome, issue, ev.duration)
		c.linksDone.Add(1)
	case eventPage:
		agg.addPage(ev)
		c.pagesDone.Add(1)
	}
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(c.Progress())
	}
}

type positioned struct {
	position int
	record   domain.IssueRecord
}

// aggregator buckets findings per seed so the report can be ordered by seed
// input order regardless of completion order.
type aggregator struct {
	seeds    []domain.SeedPage
	issues   map[int][]positioned
	failures map[int]domain.PageFailure
	pages    int
	links    int
	summary  domain.Summary
}

func newAggregator(seeds []domain.SeedPage) *aggregator {
	return &aggregator{
		seeds:    seeds,
		issues:   make(map[int][]positioned),
		failures: make(map[int]domain.PageFailure),
	}
}

func (a *aggregator) addOutcome(ev event) domain.IssueType {
	a.links++
	rec, ok := classifier.Classify(ev.link, ev.outcome)
	if !ok {
		return ""
	}
	a.summary.Add(rec.IssueType)
	a.issues[ev.seed] = append(a.issues[ev.seed], positioned{position: ev.link.Position, record: rec})
	return rec.IssueType
}

func (a *aggregator) addPage(ev event) {
	a.pages++
	if ev.failure != nil {
		a.failures[ev.seed] = *ev.failure
	}
}

func (a *aggregator) report() *domain.Report {
	r := &domain.Report{
		Issues:       []domain.IssueRecord{},
		PageFailures: []domain.PageFailure{},
		Summary:      a.summary,
		Pages:        a.pages,
		Links:        a.links,
	}
	for _, seed := range a.seeds {
		if f, ok := a.failures[seed.Index]; ok {
			r.PageFailures = append(r.PageFailures, f)
		}
		bucket := a.issues[seed.Index]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].position < bucket[j].position })
		for _, p := range bucket {
			r.Issues = append(r.Issues, p.record)
		}
	}
	return r
}
