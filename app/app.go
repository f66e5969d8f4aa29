package app

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"link-checker/internal/checker"
	"link-checker/internal/config"
	"link-checker/internal/domain"
	"link-checker/internal/exporter"
	"link-checker/internal/extractor"
	"link-checker/internal/link"
	"link-checker/internal/metrics"
	"link-checker/internal/worker"
)

// Modules is the full dependency graph without the run hook and logger.
func Modules(opts Options) fx.Option {
	options := []fx.Option{
		fx.Supply(opts.Overrides),
		fx.Supply(runSettings{env: opts.Env, progressInterval: opts.ProgressInterval}),

		config.Module,
		link.Module,
		metrics.Module,
		checker.Module,
		extractor.Module,
		worker.Module,
		exporter.Module,
	}
	if opts.OnProgress != nil {
		options = append(options, fx.Provide(func() func(domain.Progress) { return opts.OnProgress }))
	}
	return fx.Options(options...)
}

func New(opts Options, extra ...fx.Option) *fx.App {
	return fx.New(
		// Provide application-wide dependencies
		fx.Supply(opts.Logger),

		Modules(opts),
		fx.Options(extra...),

		// Register lifecycle hooks
		fx.Invoke(registerHooks),

		// Configure fx logging
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: opts.Logger}
		}),

		fx.StopTimeout(45*time.Second),
		fx.StartTimeout(15*time.Second),
	)
}
