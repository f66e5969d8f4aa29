package app

import (
	"time"

	"go.uber.org/zap"
	"link-checker/internal/common"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

// Options defines the configuration options for the application
type Options struct {
	Logger    *zap.Logger
	Env       string
	Overrides config.Overrides
	// OnProgress receives every progress update of the run. Optional.
	OnProgress func(domain.Progress)
	// ProgressInterval is how often progress is logged. Zero disables it.
	ProgressInterval time.Duration
}

// DefaultOptions returns default application options
func DefaultOptions() Options {
	logger, _ := zap.NewDevelopment()
	return Options{
		Logger:           logger,
		Env:              "development",
		ProgressInterval: 5 * time.Second,
	}
}

func fromServiceOptions(so *common.ServiceOptions) Options {
	opts := DefaultOptions()
	if so.Logger != nil {
		opts.Logger = so.Logger
	}
	if so.Env != "" {
		opts.Env = so.Env
	}
	opts.Overrides = so.Overrides
	opts.OnProgress = so.OnProgress
	return opts
}
