package link

import (
	"go.uber.org/fx"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

var Module = fx.Provide(ProvideSeeds)

// ProvideSeeds turns the configured seed list into validated seed pages.
func ProvideSeeds(cfg *config.Config) ([]domain.SeedPage, error) {
	return ParseSeeds(cfg.Seeds, cfg.MaxSeedURLs)
}
