package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"link-checker/internal/domain"
)

// schedulePages extracts every seed page with at most pageWorkers pages in
// flight and feeds the discovered links into the pool. Once ctx is cancelled
// no further pages are started and no further links are queued; work already
// running completes under probeCtx.
func (c *Coordinator) schedulePages(ctx, probeCtx context.Context, seeds []domain.SeedPage, pool *Pool, events chan<- event) {
	var g errgroup.Group
	g.SetLimit(min(c.opts.PageWorkers, len(seeds)))

	for i, seed := range seeds {
		if ctx.Err() != nil {
			c.logger.Info("run cancelled, not scheduling remaining pages",
				zap.Int("remaining", len(seeds)-i))
			break
		}
		g.Go(func() error {
			c.extractPage(ctx, probeCtx, seed, pool, events)
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Coordinator) extractPage(ctx, probeCtx context.Context, seed domain.SeedPage, pool *Pool, events chan<- event) {
	page := event{kind: eventPage, seed: seed.Index}
	defer func() { events <- page }()

	links, err := c.extractor.Extract(probeCtx, seed)
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = &domain.FetchError{Page: seed.URL, Reason: domain.ReasonConnection, Err: err}
		}
		failure := fetchErr.PageFailure()
		page.failure = &failure

		c.logger.Warn("seed page unreachable",
			zap.String("page", seed.URL),
			zap.Int("status", failure.StatusCode),
			zap.String("reason", failure.ErrorDetail))
		c.metrics.RecordPageFailure(failure.ErrorDetail)
		return
	}

	discovered := 0
	for l := range links {
		c.linksTotal.Add(1)
		if !pool.Submit(ctx, linkJob{seed: seed.Index, link: l}) {
			c.linksTotal.Add(-1)
			break
		}
		discovered++
	}

	c.metrics.RecordLinksDiscovered(discovered)
	c.logger.Debug("page scheduled",
		zap.String("page", seed.URL),
		zap.Int("links", discovered))
}
