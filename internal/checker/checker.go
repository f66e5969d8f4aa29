package checker

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"link-checker/internal/domain"
)

const maxRedirects = 10

// headKind tags the result of the HEAD attempt so the GET fallback is an
// explicit branch instead of a catch-all.
type headKind int

const (
	headSuccess headKind = iota
	headMethodNotAllowed
	headMethodFailure
	headConnectionFailed
)

type probeResult struct {
	status   int
	finalURL string
	hops     []domain.Hop
	err      error
}

type headResult struct {
	kind  headKind
	probe probeResult
}

// Validator probes link targets with HEAD and falls back to GET when the
// server does not handle HEAD.
type Validator struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	group     *singleflight.Group
	metrics   domain.MetricsCollector
	logger    *zap.Logger
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond caps the aggregate request rate; zero disables it.
	RequestsPerSecond float64
	// ShareInflight lets concurrent probes of the same URL share one result.
	ShareInflight bool
}

func New(client *http.Client, opts Options, metrics domain.MetricsCollector, logger *zap.Logger) *Validator {
	v := &Validator{
		client:    client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		metrics:   metrics,
		logger:    logger.With(zap.String("component", "validator")),
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		v.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if opts.ShareInflight {
		v.group = &singleflight.Group{}
	}
	return v
}

// Validate probes target and always returns an outcome; transport failures
// become StatusCode 0 with a short ErrorDetail.
func (v *Validator) Validate(ctx context.Context, target string) domain.ValidationOutcome {
	if v.group == nil {
		return v.validate(ctx, target)
	}
	res, _, _ := v.group.Do(target, func() (interface{}, error) {
		return v.validate(ctx, target), nil
	})
	return res.(domain.ValidationOutcome)
}

func (v *Validator) validate(ctx context.Context, target string) domain.ValidationOutcome {
	head := classifyHead(v.probe(ctx, http.MethodHead, target))

	switch head.kind {
	case headSuccess, headConnectionFailed:
		return outcome(target, http.MethodHead, head.probe)
	}

	v.logger.Debug("HEAD not supported, retrying with GET",
		zap.String("url", target),
		zap.Int("head_status", head.probe.status),
		zap.Error(head.probe.err))
	v.metrics.RecordHeadFallback()

	return outcome(target, http.MethodGet, v.probe(ctx, http.MethodGet, target))
}

func classifyHead(p probeResult) headResult {
	switch {
	case p.err != nil && isMethodFailure(p.err):
		return headResult{kind: headMethodFailure, probe: p}
	case p.err != nil:
		return headResult{kind: headConnectionFailed, probe: p}
	case p.status == http.StatusMethodNotAllowed:
		return headResult{kind: headMethodNotAllowed, probe: p}
	default:
		return headResult{kind: headSuccess, probe: p}
	}
}

func outcome(target, method string, p probeResult) domain.ValidationOutcome {
	o := domain.ValidationOutcome{
		RequestedURL: target,
		Method:       method,
		Hops:         p.hops,
	}
	if p.err != nil {
		o.ErrorDetail = FailureReason(p.err)
		return o
	}
	o.StatusCode = p.status
	o.FinalURL = p.finalURL
	return o
}

// probe issues one request, following redirects and recording every leg.
func (v *Validator) probe(ctx context.Context, method, target string) probeResult {
	if v.limiter != nil {
		if err := v.limiter.Wait(ctx); err != nil {
			return probeResult{err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return probeResult{err: &invalidURLError{err: err}}
	}
	req.Header.Set("User-Agent", v.userAgent)

	var hops []domain.Hop
	client := *v.client
	client.CheckRedirect = func(next *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errTooManyRedirects
		}
		if next.Response != nil {
			hops = append(hops, domain.Hop{
				URL:        via[len(via)-1].URL.String(),
				StatusCode: next.Response.StatusCode,
			})
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return probeResult{hops: hops, err: err}
	}
	defer resp.Body.Close()

	return probeResult{
		status:   resp.StatusCode,
		finalURL: resp.Request.URL.String(),
		hops:     hops,
	}
}

type invalidURLError struct {
	err error
}

func (e *invalidURLError) Error() string { return "invalid url: " + e.err.Error() }
func (e *invalidURLError) Unwrap() error { return e.err }

// NewHTTPClient builds the transport shared by the extractor and validator.
// Timeouts are applied per request through the context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
