package common

import (
	"go.uber.org/zap"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

// ServiceOptions defines common options for building the application
type ServiceOptions struct {
	Logger     *zap.Logger
	Env        string
	Overrides  config.Overrides
	OnProgress func(domain.Progress)
}

// Option defines a service option modifier
type Option func(*ServiceOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

func WithEnv(env string) Option {
	return func(o *ServiceOptions) {
		o.Env = env
	}
}

// WithOverrides passes command line values on top of the config file.
func WithOverrides(ov config.Overrides) Option {
	return func(o *ServiceOptions) {
		o.Overrides = ov
	}
}

func WithProgress(fn func(domain.Progress)) Option {
	return func(o *ServiceOptions) {
		o.OnProgress = fn
	}
}
