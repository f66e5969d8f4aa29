// Package classifier turns validation outcomes into issue records.
package classifier

import (
	"net/http"

	"link-checker/internal/domain"
)

// MaxAnchorText is the number of runes of anchor text kept on a record.
const MaxAnchorText = 100

// Classify maps a validated link to an issue. The boolean is false for
// healthy links, which produce no record.
//
// Rules apply in order: connection failures are ERROR; 404 and 5xx are
// BROKEN even when reached through a redirect; any other chain containing a
// 3xx leg is REDIRECT. A final 3xx the client could not follow is its own leg.
func Classify(link domain.ExtractedLink, outcome domain.ValidationOutcome) (domain.IssueRecord, bool) {
	rec := domain.IssueRecord{
		SourcePage: link.SourcePage,
		LinkURL:    link.LinkURL,
		AnchorText: truncate(link.AnchorText, MaxAnchorText),
		StatusCode: outcome.StatusCode,
	}

	switch {
	case outcome.Failed():
		rec.IssueType = domain.IssueError
		rec.StatusCode = 0
		rec.ErrorDetail = outcome.ErrorDetail
		if rec.ErrorDetail == "" {
			rec.ErrorDetail = domain.ReasonConnection
		}
	case outcome.StatusCode == http.StatusNotFound || outcome.StatusCode >= 500:
		rec.IssueType = domain.IssueBroken
		if outcome.Redirected() {
			rec.RedirectTarget = outcome.FinalURL
		}
	case outcome.Redirected():
		rec.IssueType = domain.IssueRedirect
		rec.StatusCode = outcome.FirstRedirect().StatusCode
		rec.RedirectTarget = outcome.FinalURL
	default:
		return domain.IssueRecord{}, false
	}

	return rec, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
