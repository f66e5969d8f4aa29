// Package console prints the report as aligned tables, one block of rows per
// source page.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rodaine/table"
	"link-checker/internal/domain"
)

type Exporter struct {
	out io.Writer
}

// New ignores its settings; the table always goes to stdout.
func New(json.RawMessage) (domain.Exporter, error) {
	return NewWithWriter(os.Stdout), nil
}

func NewWithWriter(w io.Writer) domain.Exporter {
	return &Exporter{out: w}
}

func (e *Exporter) Export(report *domain.Report) error {
	if len(report.Issues) == 0 {
		if _, err := fmt.Fprintln(e.out, "No broken links, redirects or errors found."); err != nil {
			return err
		}
	} else {
		tbl := table.New("Source Page", "Link URL", "Anchor Text", "Type", "Status", "Redirect To", "Error").
			WithWriter(e.out).
			WithHeaderSeparatorRow('-')

		page := ""
		for _, issue := range report.Issues {
			shown := ""
			if issue.SourcePage != page {
				page = issue.SourcePage
				shown = page
			}
			tbl.AddRow(shown, issue.LinkURL, issue.AnchorText, issue.IssueType,
				statusText(issue.StatusCode), issue.RedirectTarget, issue.ErrorDetail)
		}
		tbl.Print()
	}

	if len(report.PageFailures) > 0 {
		if _, err := fmt.Fprintln(e.out, "\nUnreachable seed pages:"); err != nil {
			return err
		}
		tbl := table.New("Source Page", "Status", "Error").WithWriter(e.out)
		for _, f := range report.PageFailures {
			tbl.AddRow(f.SourcePage, statusText(f.StatusCode), f.ErrorDetail)
		}
		tbl.Print()
	}

	s := report.Summary
	_, err := fmt.Fprintf(e.out, "\nChecked %d links on %d pages in %s: %d issues (%d broken, %d redirects, %d errors), %d unreachable pages\n",
		report.Links, report.Pages, report.Duration.Round(time.Millisecond), s.Total, s.Broken, s.Redirect, s.Error, len(report.PageFailures))
	return err
}

func statusText(code int) string {
	if code == 0 {
		return "N/A"
	}
	return strconv.Itoa(code)
}
