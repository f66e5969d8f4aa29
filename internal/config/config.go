package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// HardMaxSeedURLs is the ceiling on seed pages per run; max_seed_urls may
	// lower it but never raise it.
	HardMaxSeedURLs = 100

	DefaultUserAgent = "link-checker/1.0 (+https://github.com/link-checker/link-checker)"
)

var validate = validator.New()

type Config struct {
	Seeds           []string         `json:"seeds"`
	MaxSeedURLs     int              `json:"max_seed_urls" validate:"min=1,max=100"`
	Checker         Checker          `json:"checker" validate:"required"`
	Workers         Workers          `json:"workers" validate:"required"`
	Exporters       []ExporterConfig `json:"exporters" validate:"dive"`
	MetricsTextfile string           `json:"metrics_textfile"`
}

type Checker struct {
	TimeoutSeconds int    `json:"timeout" validate:"min=5,max=30"`
	UserAgent      string `json:"user_agent" validate:"required"`
}

type Workers struct {
	Count                int     `json:"max_workers" validate:"min=1,max=256"`
	PageCount            int     `json:"page_workers" validate:"min=0,max=100"`
	PerLinkDelayMS       int     `json:"per_link_delay_ms" validate:"min=0,max=60000"`
	MaxRequestsPerSecond float64 `json:"max_requests_per_second" validate:"min=0"`
	ShareInflightProbes  bool    `json:"share_inflight_probes"`
}

func (c Checker) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (w Workers) PerLinkDelay() time.Duration {
	return time.Duration(w.PerLinkDelayMS) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MaxSeedURLs: HardMaxSeedURLs,
		Checker: Checker{
			TimeoutSeconds: 10,
			UserAgent:      DefaultUserAgent,
		},
		Workers: Workers{
			Count:          10,
			PerLinkDelayMS: 100,
		},
	}
}

// Overrides carries values given on the command line. Nil pointers and empty
// values leave the file configuration untouched.
type Overrides struct {
	Seeds          []string
	SeedsFile      string
	Timeout        *int
	MaxWorkers     *int
	PageWorkers    *int
	PerLinkDelayMS *int
	MaxSeedURLs    *int
	RatePerSecond  *float64
	UserAgent      string
	Exporters      []ExporterConfig
	MetricsFile    string
}

// NewConfig loads CONFIG_PATH (default config.json), applies overrides and
// validates the result. A missing default file is not an error.
func NewConfig(ov Overrides) (*Config, error) {
	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = "config.json"
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := cfg.apply(ov); err != nil {
		return nil, err
	}

	if len(cfg.Exporters) == 0 {
		table, err := NewExporterConfig(ExporterTypeTable, nil, nil)
		if err != nil {
			return nil, err
		}
		cfg.Exporters = []ExporterConfig{table}
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) apply(ov Overrides) error {
	if len(ov.Seeds) > 0 {
		c.Seeds = ov.Seeds
	}
	if ov.SeedsFile != "" {
		seeds, err := ReadSeedsFile(ov.SeedsFile)
		if err != nil {
			return err
		}
		c.Seeds = append(c.Seeds, seeds...)
	}
	if ov.Timeout != nil {
		c.Checker.TimeoutSeconds = *ov.Timeout
	}
	if ov.MaxWorkers != nil {
		c.Workers.Count = *ov.MaxWorkers
	}
	if ov.PageWorkers != nil {
		c.Workers.PageCount = *ov.PageWorkers
	}
	if ov.PerLinkDelayMS != nil {
		c.Workers.PerLinkDelayMS = *ov.PerLinkDelayMS
	}
	if ov.MaxSeedURLs != nil {
		c.MaxSeedURLs = *ov.MaxSeedURLs
	}
	if ov.RatePerSecond != nil {
		c.Workers.MaxRequestsPerSecond = *ov.RatePerSecond
	}
	if ov.UserAgent != "" {
		c.Checker.UserAgent = ov.UserAgent
	}
	if len(ov.Exporters) > 0 {
		c.Exporters = ov.Exporters
	}
	if ov.MetricsFile != "" {
		c.MetricsTextfile = ov.MetricsFile
	}
	return nil
}

// ReadSeedsFile reads one seed per line. Blank lines and lines starting with
// '#' are ignored.
func ReadSeedsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening seeds file: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seeds file: %w", err)
	}
	return seeds, nil
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errors {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Namespace(),
			err.Tag(),
		))
	}
	return fmt.Errorf("validation errors: %v", errMsgs)
}
