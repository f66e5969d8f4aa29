// Package csv writes issue records as a CSV file and reads them back.
package csv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"link-checker/internal/domain"
)

var validate = validator.New()

// Config is decoded from the exporter's raw JSON. Path "-" means stdout.
type Config struct {
	Path string `json:"path" validate:"required"`
}

// Row is one CSV line. Column names are part of the output contract.
type Row struct {
	SourcePage     string     `csv:"Source Page"`
	LinkURL        string     `csv:"Link URL"`
	AnchorText     string     `csv:"Anchor Text"`
	IssueType      string     `csv:"Issue Type"`
	StatusCode     StatusCode `csv:"Status Code"`
	RedirectTarget string     `csv:"Redirect To"`
	ErrorDetail    string     `csv:"Error"`
}

// StatusCode renders the "no response" code 0 as N/A.
type StatusCode int

const notAvailable = "N/A"

func (s StatusCode) MarshalCSV() (string, error) {
	if s == 0 {
		return notAvailable, nil
	}
	return strconv.Itoa(int(s)), nil
}

func (s *StatusCode) UnmarshalCSV(field string) error {
	if field == notAvailable || field == "" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return fmt.Errorf("invalid status code %q: %w", field, err)
	}
	*s = StatusCode(n)
	return nil
}

type Exporter struct {
	path string
	out  io.Writer
}

func New(rawConfig json.RawMessage) (domain.Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid csv config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid csv config: %w", err)
	}
	if cfg.Path == "-" {
		return NewWithWriter(os.Stdout), nil
	}
	return &Exporter{path: cfg.Path}, nil
}

func NewWithWriter(w io.Writer) domain.Exporter {
	return &Exporter{out: w}
}

func (e *Exporter) Export(report *domain.Report) error {
	if e.out != nil {
		return Marshal(report.Issues, e.out)
	}

	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", e.path, err)
	}
	if err := Marshal(report.Issues, file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", e.path, err)
	}
	return file.Close()
}

// Marshal writes a header row followed by one row per issue.
func Marshal(issues []domain.IssueRecord, w io.Writer) error {
	rows := make([]*Row, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, &Row{
			SourcePage:     issue.SourcePage,
			LinkURL:        issue.LinkURL,
			AnchorText:     issue.AnchorText,
			IssueType:      string(issue.IssueType),
			StatusCode:     StatusCode(issue.StatusCode),
			RedirectTarget: issue.RedirectTarget,
			ErrorDetail:    issue.ErrorDetail,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// Unmarshal parses output produced by Marshal.
func Unmarshal(r io.Reader) ([]domain.IssueRecord, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	issues := make([]domain.IssueRecord, 0, len(rows))
	for i, row := range rows {
		issueType, err := domain.ParseIssueType(row.IssueType)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		issues = append(issues, domain.IssueRecord{
			SourcePage:     row.SourcePage,
			LinkURL:        row.LinkURL,
			AnchorText:     row.AnchorText,
			IssueType:      issueType,
			StatusCode:     int(row.StatusCode),
			RedirectTarget: row.RedirectTarget,
			ErrorDetail:    row.ErrorDetail,
		})
	}
	return issues, nil
}
