package checker

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

// Module exports the checker module
var Module = fx.Options(
	fx.Provide(NewHTTPClient),
	fx.Provide(NewValidator),
)

// NewValidator creates a Validator from the checker and worker configuration.
func NewValidator(cfg *config.Config, client *http.Client, metrics domain.MetricsCollector, logger *zap.Logger) *Validator {
	return New(client, Options{
		Timeout:           cfg.Checker.Timeout(),
		UserAgent:         cfg.Checker.UserAgent,
		RequestsPerSecond: cfg.Workers.MaxRequestsPerSecond,
		ShareInflight:     cfg.Workers.ShareInflightProbes,
	}, metrics, logger)
}
