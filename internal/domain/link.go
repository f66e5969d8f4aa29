package domain

// SeedPage is a caller-supplied page whose outbound links are checked.
// Index is its position in the caller's list and orders the report.
type SeedPage struct {
	Index int
	URL   string
}

// ExtractedLink is one anchor found on a seed page, already resolved to an
// absolute URL.
type ExtractedLink struct {
	SourcePage string
	LinkURL    string
	AnchorText string
	Position   int
}

// Hop is one redirect leg that was followed: the URL requested and the 3xx
// status it answered with.
type Hop struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
}

// ValidationOutcome is the result of probing one link. StatusCode is the final
// status of the chain and is 0 exactly when ErrorDetail is set. Hops holds the
// redirect legs followed before the final response.
type ValidationOutcome struct {
	RequestedURL string
	StatusCode   int
	FinalURL     string
	ErrorDetail  string
	Method       string
	Hops         []Hop
}

// Redirected reports whether a 3xx leg occurred anywhere in the chain,
// independent of the final status. A final 3xx that could not be followed,
// such as a 302 without Location or a 300, counts as a leg.
func (o ValidationOutcome) Redirected() bool {
	return len(o.Hops) > 0 || isRedirectStatus(o.StatusCode)
}

// FirstRedirect returns the first redirect leg of the chain, or nil. When no
// leg was followed but the final response is 3xx, that response is the leg.
func (o ValidationOutcome) FirstRedirect() *Hop {
	if len(o.Hops) > 0 {
		return &o.Hops[0]
	}
	if isRedirectStatus(o.StatusCode) {
		return &Hop{URL: o.FinalURL, StatusCode: o.StatusCode}
	}
	return nil
}

func (o ValidationOutcome) Failed() bool {
	return o.StatusCode == 0
}

func isRedirectStatus(code int) bool {
	return code >= 300 && code < 400
}
