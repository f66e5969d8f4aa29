package link

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

// ParseSeeds validates raw seed lines and returns them in input order.
// Every malformed line contributes its own error to the returned InputError,
// numbered by its position in raw with blank lines counted; nothing is
// returned unless all lines are valid.
func ParseSeeds(raw []string, max int) ([]domain.SeedPage, error) {
	if max <= 0 || max > config.HardMaxSeedURLs {
		max = config.HardMaxSeedURLs
	}

	type seedLine struct {
		num  int
		text string
	}
	lines := make([]seedLine, 0, len(raw))
	for i, r := range raw {
		if s := strings.TrimSpace(r); s != "" {
			lines = append(lines, seedLine{num: i + 1, text: s})
		}
	}

	if len(lines) == 0 {
		return nil, domain.NewInputError("at least one seed URL is required", nil)
	}
	if len(lines) > max {
		return nil, domain.NewInputError(
			fmt.Sprintf("too many seed URLs: %d given, at most %d allowed", len(lines), max), nil)
	}

	var errs error
	seeds := make([]domain.SeedPage, 0, len(lines))
	for i, line := range lines {
		if err := validateSeed(line.text); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", line.num, err))
			continue
		}
		seeds = append(seeds, domain.SeedPage{Index: i, URL: line.text})
	}
	if errs != nil {
		return nil, domain.NewInputError("malformed seed URLs", errs)
	}

	return seeds, nil
}

func validateSeed(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%q is not a URL: %w", s, err)
	}
	if !u.IsAbs() || !fetchableSchemes.Contains(strings.ToLower(u.Scheme)) {
		return fmt.Errorf("%q must be an absolute http or https URL", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}
