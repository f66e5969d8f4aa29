package worker

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/checker"
	"link-checker/internal/config"
	"link-checker/internal/domain"
	"link-checker/internal/extractor"
	"link-checker/internal/interfaces"
)

var Module = fx.Options(
	fx.Provide(NewCoordinatorFromConfig),
	fx.Provide(func(c *Coordinator) interfaces.Coordinator { return c }),
)

type coordinatorParams struct {
	fx.In

	Config     *config.Config
	Extractor  *extractor.Extractor
	Validator  *checker.Validator
	Metrics    domain.MetricsCollector
	Logger     *zap.Logger
	OnProgress func(domain.Progress) `optional:"true"`
}

func NewCoordinatorFromConfig(p coordinatorParams) *Coordinator {
	return NewCoordinator(p.Extractor, p.Validator, Options{
		MaxWorkers:   p.Config.Workers.Count,
		PageWorkers:  p.Config.Workers.PageCount,
		PerLinkDelay: p.Config.Workers.PerLinkDelay(),
		MaxSeedURLs:  p.Config.MaxSeedURLs,
		OnProgress:   p.OnProgress,
	}, p.Metrics, p.Logger)
}
