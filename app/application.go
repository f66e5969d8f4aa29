package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/common"
)

type Application struct {
	app    *fx.App
	logger *zap.Logger
}

func NewApplication(opts ...common.Option) *Application {
	options := &common.ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Ensure required options are set
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &Application{
		app:    New(fromServiceOptions(options)),
		logger: options.Logger,
	}
}

// Err reports a failure to build the dependency graph, such as invalid
// configuration or seed URLs.
func (a *Application) Err() error {
	return a.app.Err()
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

// Wait delivers the shutdown signal: either the run finishing or an OS
// signal.
func (a *Application) Wait() <-chan fx.ShutdownSignal {
	return a.app.Wait()
}
