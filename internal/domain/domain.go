package domain

import (
	"fmt"
	"strings"
	"time"
)

type IssueType string

const (
	IssueBroken   IssueType = "BROKEN"
	IssueRedirect IssueType = "REDIRECT"
	IssueError    IssueType = "ERROR"
)

// ParseIssueType accepts any casing of a known issue type.
func ParseIssueType(s string) (IssueType, error) {
	switch t := IssueType(strings.ToUpper(strings.TrimSpace(s))); t {
	case IssueBroken, IssueRedirect, IssueError:
		return t, nil
	default:
		return "", fmt.Errorf("unknown issue type %q", s)
	}
}

// IssueRecord is one problematic link with enough context to locate it.
type IssueRecord struct {
	SourcePage     string    `json:"source_page"`
	LinkURL        string    `json:"link_url"`
	AnchorText     string    `json:"anchor_text"`
	IssueType      IssueType `json:"issue_type"`
	StatusCode     int       `json:"status_code"`
	RedirectTarget string    `json:"redirect_to,omitempty"`
	ErrorDetail    string    `json:"error,omitempty"`
}

// PageFailure records a seed page that could not be fetched at all.
type PageFailure struct {
	SourcePage  string `json:"source_page"`
	StatusCode  int    `json:"status_code"`
	ErrorDetail string `json:"error"`
}

type Summary struct {
	Total    int `json:"total"`
	Broken   int `json:"broken"`
	Redirect int `json:"redirect"`
	Error    int `json:"error"`
}

func (s *Summary) Add(t IssueType) {
	s.Total++
	switch t {
	case IssueBroken:
		s.Broken++
	case IssueRedirect:
		s.Redirect++
	case IssueError:
		s.Error++
	}
}

// Report is the terminal artifact of one run. Issues are grouped by source
// page in seed order.
type Report struct {
	Issues       []IssueRecord `json:"issues"`
	PageFailures []PageFailure `json:"page_failures"`
	Summary      Summary       `json:"summary"`
	Pages        int           `json:"pages"`
	Links        int           `json:"links"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Clean reports whether the run found nothing to act on.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0 && len(r.PageFailures) == 0
}

// Filter returns the issues whose type is accepted by keep.
func (r *Report) Filter(keep func(IssueType) bool) []IssueRecord {
	out := make([]IssueRecord, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if keep(issue.IssueType) {
			out = append(out, issue)
		}
	}
	return out
}

// Progress is a point-in-time view of a running check.
type Progress struct {
	PagesTotal int
	PagesDone  int
	LinksTotal int
	LinksDone  int
}

// Exporter renders or ships a finished report.
type Exporter interface {
	Export(report *Report) error
}
