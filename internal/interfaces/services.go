package interfaces

import (
	"context"
	"iter"

	"link-checker/internal/domain"
)

// LinkValidator probes a single absolute URL.
type LinkValidator interface {
	Validate(ctx context.Context, url string) domain.ValidationOutcome
}

// PageExtractor fetches a seed page and yields its links.
type PageExtractor interface {
	Extract(ctx context.Context, page domain.SeedPage) (iter.Seq[domain.ExtractedLink], error)
}

// Coordinator runs a complete check over a set of seed pages.
type Coordinator interface {
	Run(ctx context.Context, seeds []domain.SeedPage) (*domain.Report, error)
	Progress() domain.Progress
}
