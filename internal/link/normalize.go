package link

import (
	"net/url"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// skippedSchemes are never fetched; they are dropped before resolution.
var skippedSchemes = mapset.NewThreadUnsafeSet("mailto", "tel", "javascript", "data")

var fetchableSchemes = mapset.NewThreadUnsafeSet("http", "https")

// Normalize resolves href against base. Absolute hrefs are returned as
// written, apart from surrounding whitespace. The boolean is false when the
// href must be skipped: empty, fragment-only, unparsable, or pointing at a
// scheme that cannot be checked over HTTP.
func Normalize(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if skippedSchemes.Contains(strings.ToLower(ref.Scheme)) {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if !fetchableSchemes.Contains(strings.ToLower(resolved.Scheme)) || resolved.Host == "" {
		return "", false
	}

	if ref.IsAbs() {
		return href, true
	}
	return resolved.String(), true
}
