package checker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"link-checker/internal/classifier"
	"link-checker/internal/domain"
)

const testAgent = "link-checker-test/1.0"

type countingMetrics struct {
	fallbacks atomic.Int32
}

func (m *countingMetrics) RecordCheck(domain.ValidationOutcome, domain.IssueType, time.Duration) {}

func (m *countingMetrics) RecordHeadFallback() {
	m.fallbacks.Add(1)
}

func (m *countingMetrics) RecordPageFailure(string) {}

func (m *countingMetrics) RecordLinksDiscovered(int) {}

func (m *countingMetrics) RecordWorkerStart(string) {}

func (m *countingMetrics) RecordWorkerStop(string) {}

func newTestValidator(t *testing.T, opts Options) (*Validator, *countingMetrics) {
	t.Helper()
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = testAgent
	}
	m := &countingMetrics{}
	return New(NewHTTPClient(), opts, m, zap.NewNop()), m
}

func TestValidate_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "OK", statusCode: http.StatusOK},
		{name: "Not found", statusCode: http.StatusNotFound},
		{name: "Server error", statusCode: http.StatusInternalServerError},
		{name: "Forbidden from HEAD is final", statusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var methods []string
			var mu sync.Mutex
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				methods = append(methods, r.Method)
				mu.Unlock()
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			v, _ := newTestValidator(t, Options{})
			got := v.Validate(context.Background(), server.URL)

			assert.Equal(t, tt.statusCode, got.StatusCode)
			assert.Equal(t, server.URL, got.RequestedURL)
			assert.Equal(t, server.URL, got.FinalURL)
			assert.Empty(t, got.ErrorDetail)
			assert.False(t, got.Redirected())
			assert.Equal(t, http.MethodHead, got.Method)
			assert.Equal(t, []string{http.MethodHead}, methods)
		})
	}
}

func TestValidate_UserAgent(t *testing.T) {
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.UserAgent())
	}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{})
	v.Validate(context.Background(), server.URL)
	assert.Equal(t, testAgent, agent.Load())
}

func TestValidate_HeadMethodNotAllowedFallsBackToGet(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v, recorder := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), server.URL)

	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
	assert.Equal(t, 1, int(recorder.fallbacks.Load()))
}

func TestValidate_GetResultSupersedes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), server.URL)
	assert.Equal(t, http.StatusNotFound, got.StatusCode)
}

func TestValidate_HeadConnectionDroppedFallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			hj, ok := w.(http.Hijacker)
			if !ok {
				return
			}
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v, recorder := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), server.URL)

	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Empty(t, got.ErrorDetail)
	assert.Equal(t, 1, int(recorder.fallbacks.Load()))
}

func TestValidate_RedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/older", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/older", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/missing", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/nowhere", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	v, _ := newTestValidator(t, Options{})

	t.Run("Redirect to healthy page", func(t *testing.T) {
		got := v.Validate(context.Background(), server.URL+"/old")
		assert.Equal(t, http.StatusOK, got.StatusCode)
		assert.Equal(t, server.URL+"/new", got.FinalURL)
		require.True(t, got.Redirected())
		assert.Equal(t, []domain.Hop{
			{URL: server.URL + "/old", StatusCode: http.StatusMovedPermanently},
			{URL: server.URL + "/older", StatusCode: http.StatusFound},
		}, got.Hops)
	})

	t.Run("Redirect to missing page keeps hop", func(t *testing.T) {
		got := v.Validate(context.Background(), server.URL+"/gone")
		assert.Equal(t, http.StatusNotFound, got.StatusCode)
		assert.True(t, got.Redirected())
		assert.Equal(t, http.StatusTemporaryRedirect, got.FirstRedirect().StatusCode)
	})

	t.Run("Redirect without location is still a redirect", func(t *testing.T) {
		got := v.Validate(context.Background(), server.URL+"/nowhere")
		assert.Equal(t, http.StatusFound, got.StatusCode)
		assert.Equal(t, http.MethodHead, got.Method)
		assert.Empty(t, got.Hops)
		require.True(t, got.Redirected())
		assert.Equal(t, http.StatusFound, got.FirstRedirect().StatusCode)

		rec, ok := classifier.Classify(domain.ExtractedLink{LinkURL: server.URL + "/nowhere"}, got)
		require.True(t, ok)
		assert.Equal(t, domain.IssueRedirect, rec.IssueType)
		assert.Equal(t, http.StatusFound, rec.StatusCode)
		assert.Equal(t, server.URL+"/nowhere", rec.RedirectTarget)
	})
}

func TestValidate_TooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), server.URL+"/loop")

	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, domain.ReasonTooManyRedirects, got.ErrorDetail)
}

func TestValidate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	v, recorder := newTestValidator(t, Options{Timeout: 50 * time.Millisecond})
	got := v.Validate(context.Background(), server.URL)

	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, domain.ReasonTimeout, got.ErrorDetail)
	assert.Equal(t, 0, int(recorder.fallbacks.Load()), "a timeout is not a reason to retry with GET")
}

func TestValidate_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	v, recorder := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), "http://"+addr+"/")

	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, domain.ReasonConnection, got.ErrorDetail)
	assert.Empty(t, got.FinalURL)
	assert.Equal(t, 0, int(recorder.fallbacks.Load()))
}

func TestValidate_TLSFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), server.URL)

	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, domain.ReasonTLS, got.ErrorDetail)
}

func TestValidate_InvalidURL(t *testing.T) {
	v, _ := newTestValidator(t, Options{})
	got := v.Validate(context.Background(), "http://[::1")
	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, domain.ReasonInvalidURL, got.ErrorDetail)
}

func TestValidate_Idempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{})
	for i := 0; i < 5; i++ {
		got := v.Validate(context.Background(), server.URL)
		assert.Equal(t, 2, got.StatusCode/100)
	}
}

func TestValidate_ShareInflight(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{ShareInflight: true})

	const callers = 5
	var started, wg sync.WaitGroup
	results := make([]domain.ValidationOutcome, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i] = v.Validate(context.Background(), server.URL)
		}(i)
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, http.StatusOK, r.StatusCode)
	}
	assert.Less(t, int(hits.Load()), callers)
}

func TestValidate_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	v, _ := newTestValidator(t, Options{RequestsPerSecond: 20})

	start := time.Now()
	for i := 0; i < 25; i++ {
		v.Validate(context.Background(), server.URL)
	}
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}
