package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"link-checker/app"
	"link-checker/internal/common"
	"link-checker/internal/config"
)

// exitError ends the process with a specific code. The reason has already
// been logged.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type flags struct {
	seedsFile   string
	timeout     int
	maxWorkers  int
	pageWorkers int
	delayMS     int
	maxSeeds    int
	rate        float64
	userAgent   string
	csvPath     string
	jsonPath    string
	issueTypes  []string
	metricsFile string
	quiet       bool
}

func rootCommand() *cobra.Command {
	return newRootCommand(&flags{})
}

func newRootCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link-checker [flags] [seed-url...]",
		Short: "Find broken links, redirects and unreachable targets on a set of pages",
		Long: `link-checker fetches each seed page, extracts its anchors and checks every
linked URL with HEAD, falling back to GET when the server rejects HEAD.

Problematic links are reported as BROKEN (404 or 5xx), REDIRECT (a 3xx hop
occurred) or ERROR (no HTTP response). A findings table is printed unless other
exporters are configured.

Exit status is 0 when nothing was found, 1 when issues were found, 2 for invalid
input, 3 when exporting failed and 130 when interrupted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := f.overrides(cmd, args)
			if err != nil {
				return err
			}
			return run(ov, f.quiet)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.seedsFile, "seeds-file", "", "file with one seed URL per line")
	fs.IntVar(&f.timeout, "timeout", 10, "per-request timeout in seconds (5-30)")
	fs.IntVar(&f.maxWorkers, "max-workers", 10, "concurrent link validations")
	fs.IntVar(&f.pageWorkers, "page-workers", 0, "concurrent seed page fetches (0 = same as --max-workers)")
	fs.IntVar(&f.delayMS, "per-link-delay-ms", 100, "pause after each validation, per worker")
	fs.IntVar(&f.maxSeeds, "max-seeds", config.HardMaxSeedURLs, "maximum number of seed URLs")
	fs.Float64Var(&f.rate, "rate", 0, "cap on requests per second across all workers (0 = unlimited)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header for every request")
	fs.StringVar(&f.csvPath, "csv", "", "write issues as CSV to this path (- for stdout)")
	fs.StringVar(&f.jsonPath, "json", "", "write the report as JSON to this path (- for stdout)")
	fs.StringSliceVar(&f.issueTypes, "issue-types", nil, "only export these issue types (BROKEN, REDIRECT, ERROR)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log warnings and errors")

	return cmd
}

func (f *flags) overrides(cmd *cobra.Command, args []string) (config.Overrides, error) {
	fs := cmd.Flags()
	ov := config.Overrides{
		Seeds:       args,
		SeedsFile:   f.seedsFile,
		UserAgent:   f.userAgent,
		MetricsFile: f.metricsFile,
	}

	if fs.Changed("timeout") {
		ov.Timeout = &f.timeout
	}
	if fs.Changed("max-workers") {
		ov.MaxWorkers = &f.maxWorkers
	}
	if fs.Changed("page-workers") {
		ov.PageWorkers = &f.pageWorkers
	}
	if fs.Changed("per-link-delay-ms") {
		ov.PerLinkDelayMS = &f.delayMS
	}
	if fs.Changed("max-seeds") {
		ov.MaxSeedURLs = &f.maxSeeds
	}
	if fs.Changed("rate") {
		ov.RatePerSecond = &f.rate
	}

	exporters := []struct {
		typ, path string
	}{
		{config.ExporterTypeCSV, f.csvPath},
		{config.ExporterTypeJSON, f.jsonPath},
	}
	for _, e := range exporters {
		if e.path == "" {
			continue
		}
		exp, err := config.NewExporterConfig(e.typ, map[string]any{"path": e.path}, f.issueTypes)
		if err != nil {
			return ov, fmt.Errorf("--%s: %w", e.typ, err)
		}
		ov.Exporters = append(ov.Exporters, exp)
	}
	// Output flags replace the configured exporters; the table still goes to
	// stdout unless a file exporter already writes there.
	if (len(ov.Exporters) > 0 || len(f.issueTypes) > 0) && f.csvPath != "-" && f.jsonPath != "-" {
		table, err := config.NewExporterConfig(config.ExporterTypeTable, nil, f.issueTypes)
		if err != nil {
			return ov, err
		}
		ov.Exporters = append(ov.Exporters, table)
	}

	return ov, nil
}

func newLogger(env string, quiet bool) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(env, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	// Reports go to stdout; logs stay on stderr.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(ov config.Overrides, quiet bool) error {
	env := os.Getenv("APP_ENV")
	logger, err := newLogger(env, quiet)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	application := app.NewApplication(
		common.WithLogger(logger),
		common.WithEnv(env),
		common.WithOverrides(ov),
	)
	if err := application.Err(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return &exitError{code: app.ExitInvalidInput}
	}

	// Start with background context
	if err := application.Start(context.Background()); err != nil {
		logger.Error("failed to start application", zap.Error(err))
		return &exitError{code: app.ExitInvalidInput}
	}

	sig := <-application.Wait()
	code := sig.ExitCode
	if sig.Signal != nil {
		logger.Info("received shutdown signal", zap.String("signal", sig.Signal.String()))
		code = app.ExitInterrupted
	}

	// Stop with timeout
	stopCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	if err := application.Stop(stopCtx); err != nil {
		logger.Error("failed to stop application gracefully", zap.Error(err))
	}

	if code != app.ExitClean {
		return &exitError{code: code}
	}
	return nil
}
