package exporter

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"link-checker/internal/config"
	"link-checker/internal/domain"
	"link-checker/internal/exporter/console"
	"link-checker/internal/exporter/csv"
	"link-checker/internal/exporter/jsonfile"
	"link-checker/internal/exporter/uptimekuma"
)

// Module exports the exporter module
var Module = fx.Options(
	fx.Provide(NewManager),
)

type entry struct {
	kind     string
	exporter domain.Exporter
	// issueTypes is empty when every type is exported.
	issueTypes mapset.Set[domain.IssueType]
}

// Manager fans a finished report out to every configured exporter.
type Manager struct {
	entries []entry
	logger  *zap.Logger
}

func NewManager(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	manager := &Manager{
		logger: logger.With(zap.String("component", "exporter")),
	}

	for _, expCfg := range cfg.Exporters {
		exporter, err := createExporter(&expCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter %s: %w", expCfg.Type, err)
		}

		types := mapset.NewSet[domain.IssueType]()
		for _, raw := range expCfg.IssueTypes {
			t, err := domain.ParseIssueType(raw)
			if err != nil {
				return nil, fmt.Errorf("exporter %s: %w", expCfg.Type, err)
			}
			types.Add(t)
		}

		manager.entries = append(manager.entries, entry{
			kind:       expCfg.Type,
			exporter:   exporter,
			issueTypes: types,
		})
	}

	return manager, nil
}

// Add registers an exporter outside of configuration.
func (m *Manager) Add(kind string, exporter domain.Exporter, issueTypes ...domain.IssueType) {
	m.entries = append(m.entries, entry{
		kind:       kind,
		exporter:   exporter,
		issueTypes: mapset.NewSet(issueTypes...),
	})
}

// Export hands the report to every exporter. A failing exporter does not
// stop the others; all failures are returned together.
func (m *Manager) Export(report *domain.Report) error {
	var errs error
	for _, e := range m.entries {
		if err := e.exporter.Export(e.view(report)); err != nil {
			m.logger.Error("failed to export report",
				zap.String("exporter", e.kind),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s exporter: %w", e.kind, err))
		}
	}
	return errs
}

// view narrows the report to the entry's issue types, recounting the summary.
func (e entry) view(report *domain.Report) *domain.Report {
	if e.issueTypes.Cardinality() == 0 {
		return report
	}

	filtered := *report
	filtered.Issues = report.Filter(func(t domain.IssueType) bool { return e.issueTypes.ContainsOne(t) })
	filtered.Summary = domain.Summary{}
	for _, issue := range filtered.Issues {
		filtered.Summary.Add(issue.IssueType)
	}
	return &filtered
}

func createExporter(cfg *config.ExporterConfig) (domain.Exporter, error) {
	switch cfg.Type {
	case config.ExporterTypeCSV:
		return csv.New(cfg.Raw)
	case config.ExporterTypeJSON:
		return jsonfile.New(cfg.Raw)
	case config.ExporterTypeTable:
		return console.New(cfg.Raw)
	case config.ExporterTypeUptimeKuma:
		return uptimekuma.New(cfg.Raw)
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Type)
	}
}
