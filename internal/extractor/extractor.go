package extractor

import (
	"context"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"link-checker/internal/checker"
	"link-checker/internal/config"
	"link-checker/internal/domain"
	"link-checker/internal/link"
)

// maxBodyBytes bounds how much of a seed page is parsed.
const maxBodyBytes = 10 << 20

var Module = fx.Provide(NewFromConfig)

// Extractor fetches seed pages and yields their anchors.
type Extractor struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

func New(client *http.Client, userAgent string, timeout time.Duration, logger *zap.Logger) *Extractor {
	return &Extractor{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "extractor")),
	}
}

func NewFromConfig(cfg *config.Config, client *http.Client, logger *zap.Logger) *Extractor {
	return New(client, cfg.Checker.UserAgent, cfg.Checker.Timeout(), logger)
}

// Extract fetches page and returns the links found on it in document order.
// A page that cannot be fetched, or answers with a non-2xx status, yields a
// *domain.FetchError and no links.
func (e *Extractor) Extract(ctx context.Context, page domain.SeedPage) (iter.Seq[domain.ExtractedLink], error) {
	doc, base, err := e.fetch(ctx, page.URL)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("page fetched", zap.String("page", page.URL), zap.String("base", base.String()))

	return func(yield func(domain.ExtractedLink) bool) {
		position := 0
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			target, ok := link.Normalize(href, base)
			if !ok {
				return true
			}
			l := domain.ExtractedLink{
				SourcePage: page.URL,
				LinkURL:    target,
				AnchorText: anchorText(s),
				Position:   position,
			}
			position++
			return yield(l)
		})
	}, nil
}

// Collect drains a link sequence into a slice.
func Collect(links iter.Seq[domain.ExtractedLink]) []domain.ExtractedLink {
	var out []domain.ExtractedLink
	for l := range links {
		out = append(out, l)
	}
	return out
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, &domain.FetchError{Page: pageURL, Reason: domain.ReasonInvalidURL, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, &domain.FetchError{Page: pageURL, Reason: checker.FailureReason(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &domain.FetchError{Page: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &domain.FetchError{Page: pageURL, Reason: checker.FailureReason(err), Err: err}
	}

	return doc, baseURL(doc, resp.Request.URL), nil
}

// baseURL honours a <base href> element, resolved against the final
// response URL.
func baseURL(doc *goquery.Document, responseURL *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return responseURL
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return responseURL
	}
	return responseURL.ResolveReference(ref)
}

func anchorText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
