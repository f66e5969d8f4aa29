package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/domain"
	"link-checker/internal/exporter"
	"link-checker/internal/interfaces"
)

// Process exit codes reported through fx.Shutdowner.
const (
	ExitClean        = 0
	ExitIssuesFound  = 1
	ExitInvalidInput = 2
	ExitExportFailed = 3
	ExitInterrupted  = 130
)

type runSettings struct {
	env              string
	progressInterval time.Duration
}

type hookParams struct {
	fx.In

	Logger      *zap.Logger
	Lifecycle   fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Coordinator interfaces.Coordinator
	Seeds       []domain.SeedPage
	Exporters   *exporter.Manager
	Settings    runSettings
}

// registerHooks starts the check when the app starts and shuts the app down
// with an exit code once the report is exported. Stopping the app early
// cancels the run.
func registerHooks(p hookParams) {
	logger := p.Logger.With(zap.String("component", "app"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting application",
				zap.String("env", p.Settings.env),
				zap.Int("seeds", len(p.Seeds)))

			go func() {
				defer close(done)
				code := run(ctx, p, logger)
				if err := p.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error("failed to request shutdown", zap.Error(err))
				}
			}()
			if p.Settings.progressInterval > 0 {
				go logProgress(done, p.Coordinator, p.Settings.progressInterval, logger)
			}
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("stopping application")
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func run(ctx context.Context, p hookParams, logger *zap.Logger) int {
	report, err := p.Coordinator.Run(ctx, p.Seeds)

	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		logger.Error("invalid input", zap.Error(err))
		return ExitInvalidInput
	}
	if report == nil {
		logger.Error("check failed", zap.Error(err))
		return ExitInvalidInput
	}

	if exportErr := p.Exporters.Export(report); exportErr != nil {
		return ExitExportFailed
	}

	switch {
	case err != nil:
		logger.Warn("check interrupted, partial report exported", zap.Error(err))
		return ExitInterrupted
	case !report.Clean():
		return ExitIssuesFound
	default:
		return ExitClean
	}
}

func logProgress(done <-chan struct{}, c interfaces.Coordinator, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p := c.Progress()
			logger.Info("progress",
				zap.Int("pages_done", p.PagesDone),
				zap.Int("pages_total", p.PagesTotal),
				zap.Int("links_done", p.LinksDone),
				zap.Int("links_total", p.LinksTotal))
		}
	}
}
