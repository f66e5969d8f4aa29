package config

import "go.uber.org/fx"

// Module provides *Config built from the supplied Overrides.
var Module = fx.Provide(NewConfig)
