package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"link-checker/internal/domain"
)

func TestExport_GroupsByPage(t *testing.T) {
	report := &domain.Report{
		Issues: []domain.IssueRecord{
			{SourcePage: "https://a.example/", LinkURL: "https://a.example/missing", AnchorText: "X", IssueType: domain.IssueBroken, StatusCode: 404},
			{SourcePage: "https://a.example/", LinkURL: "https://a.example/old", AnchorText: "Y", IssueType: domain.IssueRedirect, StatusCode: 301, RedirectTarget: "https://a.example/new"},
			{SourcePage: "https://b.example/", LinkURL: "https://dead.invalid/", AnchorText: "Z", IssueType: domain.IssueError, ErrorDetail: domain.ReasonConnection},
		},
		PageFailures: []domain.PageFailure{{SourcePage: "https://c.example/", StatusCode: 500, ErrorDetail: "http_500"}},
		Summary:      domain.Summary{Total: 3, Broken: 1, Redirect: 1, Error: 1},
		Pages:        3,
		Links:        9,
	}

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Export(report))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "https://a.example/ "), "page shown once per group")
	assert.Contains(t, out, "https://a.example/new")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "Unreachable seed pages:")
	assert.Contains(t, out, "http_500")
	assert.Contains(t, out, "Checked 9 links on 3 pages")
	assert.Contains(t, out, "3 issues (1 broken, 1 redirects, 1 errors), 1 unreachable pages")
}

func TestExport_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Export(&domain.Report{Pages: 1, Links: 4}))

	assert.Contains(t, buf.String(), "No broken links")
	assert.NotContains(t, buf.String(), "Unreachable")
}
