package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/config"
	"link-checker/internal/domain"
)

// Module provides the metrics collector
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
	fx.Invoke(registerHooks),
)

type Collector struct {
	logger          *zap.Logger
	registry        *prometheus.Registry
	checksTotal     *prometheus.CounterVec
	probeDuration   *prometheus.HistogramVec
	statusCodes     *prometheus.CounterVec
	headFallbacks   prometheus.Counter
	pageFailures    *prometheus.CounterVec
	linksDiscovered prometheus.Counter
	workerStarts    *prometheus.CounterVec
	workerStops     *prometheus.CounterVec
	activeWorkers   prometheus.Gauge
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func NewCollector(registry *prometheus.Registry, logger *zap.Logger) *Collector {
	factory := promauto.With(registry)
	return &Collector{
		logger:   logger,
		registry: registry,
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_checks_total",
				Help: "Total number of link validations by resulting issue type",
			},
			[]string{"issue_type"},
		),
		probeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkcheck_probe_duration_seconds",
				Help:    "Duration of link validations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		statusCodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_status_codes_total",
				Help: "Final HTTP status codes observed, 0 for connection failures",
			},
			[]string{"code"},
		),
		headFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "linkcheck_head_fallbacks_total",
				Help: "Total number of HEAD requests retried with GET",
			},
		),
		pageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_page_failures_total",
				Help: "Total number of seed pages that could not be fetched",
			},
			[]string{"reason"},
		),
		linksDiscovered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "linkcheck_links_discovered_total",
				Help: "Total number of links extracted from seed pages",
			},
		),
		workerStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_worker_starts_total",
				Help: "Total number of worker starts",
			},
			[]string{"worker_id"},
		),
		workerStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_worker_stops_total",
				Help: "Total number of worker stops",
			},
			[]string{"worker_id"},
		),
		activeWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "linkcheck_active_workers",
				Help: "Number of currently active validation workers",
			},
		),
	}
}

func (c *Collector) RecordCheck(outcome domain.ValidationOutcome, issue domain.IssueType, duration time.Duration) {
	label := string(issue)
	if label == "" {
		label = "OK"
	}
	c.checksTotal.WithLabelValues(label).Inc()
	c.probeDuration.WithLabelValues(outcome.Method).Observe(duration.Seconds())
	c.statusCodes.WithLabelValues(strconv.Itoa(outcome.StatusCode)).Inc()
}

func (c *Collector) RecordHeadFallback() {
	c.headFallbacks.Inc()
}

func (c *Collector) RecordPageFailure(reason string) {
	c.pageFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordLinksDiscovered(n int) {
	c.linksDiscovered.Add(float64(n))
}

func (c *Collector) RecordWorkerStart(workerID string) {
	c.workerStarts.WithLabelValues(workerID).Inc()
	c.activeWorkers.Inc()
}

func (c *Collector) RecordWorkerStop(workerID string) {
	c.workerStops.WithLabelValues(workerID).Inc()
	c.activeWorkers.Dec()
}

// WriteTextfile dumps the current metrics in the Prometheus text format, for
// pickup by a node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func registerHooks(lc fx.Lifecycle, cfg *config.Config, c *Collector) {
	if cfg.MetricsTextfile == "" {
		return
	}
	lc.Append(fx.StopHook(func() error {
		c.logger.Info("writing metrics textfile", zap.String("path", cfg.MetricsTextfile))
		return c.WriteTextfile(cfg.MetricsTextfile)
	}))
}

var _ domain.MetricsCollector = (*Collector)(nil)
