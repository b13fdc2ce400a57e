package clients

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// step is one scripted round trip: either a status with body or an error.
type step struct {
	status int
	body   string
	err    error
}

// script is a RoundTripper that answers with its steps in order and records
// every request it saw. It repeats the last step once exhausted.
type script struct {
	mu    sync.Mutex
	steps []step
	seen  []*http.Request
	clone []string
}

func (s *script) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}

	s.seen = append(s.seen, req)
	s.clone = append(s.clone, body)

	st := s.steps[min(len(s.seen), len(s.steps))-1]
	if st.err != nil {
		return nil, st.err
	}

	return &http.Response{
		StatusCode: st.status,
		Body:       io.NopCloser(strings.NewReader(st.body)),
		Header:     http.Header{},
		Request:    req,
	}, nil
}

func (s *script) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}

func testClient(t *testing.T, attempts int, steps ...step) (*Client, *script) {
	t.Helper()

	rt := &script{steps: steps}

	c, err := New(&Config{
		BaseURL:     "http://remote.test/",
		ServiceName: "remote-quotes",
		Timeout:     time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     attempts,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   2,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
		RoundTripper: rt,
	})
	require.NoError(t, err)

	return c, rt
}

var refused = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.EqualError(t, err, "config is required")

	_, err = New(&Config{})
	assert.EqualError(t, err, "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := &Config{ServiceName: "remote-quotes"}

	c, err := New(cfg)

	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.cfg.Timeout)
	assert.Equal(t, 1, c.cfg.Retry.MaxAttempts)
	assert.Equal(t, defaultUserAgent, c.cfg.UserAgent)
	assert.Zero(t, cfg.Timeout, "caller's config is not modified")
	assert.Equal(t, "remote-quotes", c.ServiceName())
	assert.Equal(t, StateClosed, c.CircuitState())
}

func TestClient_URL(t *testing.T) {
	c, _ := testClient(t, 1, step{status: http.StatusOK})

	assert.Equal(t, "http://remote.test/posts", c.url("/posts"))
	assert.Equal(t, "http://remote.test/posts", c.url("posts"))
	assert.Equal(t, "http://remote.test/posts/3?x=1", c.url("/posts/3?x=1"))
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name       string
		attempts   int
		steps      []step
		wantStatus int
		wantErr    error
		wantCalls  int
	}{
		{
			name:       "success first try",
			attempts:   3,
			steps:      []step{{status: http.StatusOK}},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "5xx then success",
			attempts:   3,
			steps:      []step{{status: http.StatusServiceUnavailable}, {status: http.StatusBadGateway}, {status: http.StatusOK}},
			wantStatus: http.StatusOK,
			wantCalls:  3,
		},
		{
			name:       "connection refused then success",
			attempts:   2,
			steps:      []step{{err: refused}, {status: http.StatusOK}},
			wantStatus: http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "4xx is returned, not retried",
			attempts:   3,
			steps:      []step{{status: http.StatusNotFound}},
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
		{
			name:      "5xx until attempts run out",
			attempts:  3,
			steps:     []step{{status: http.StatusServiceUnavailable}},
			wantErr:   ErrMaxRetriesExceeded,
			wantCalls: 3,
		},
		{
			name:      "single attempt by default",
			attempts:  0,
			steps:     []step{{status: http.StatusInternalServerError}},
			wantErr:   ErrMaxRetriesExceeded,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rt := testClient(t, tt.attempts, tt.steps...)

			resp, err := c.Get(t.Context(), "/posts")

			assert.Equal(t, tt.wantCalls, rt.calls())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)

				return
			}

			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestClient_NonRetryableTransportError(t *testing.T) {
	boom := errors.New("tls: bad certificate")
	c, rt := testClient(t, 3, step{err: boom})

	_, err := c.Get(t.Context(), "/posts")

	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 1, rt.calls())
}

func TestClient_BodyReplayedOnRetry(t *testing.T) {
	c, rt := testClient(t, 2, step{status: http.StatusServiceUnavailable}, step{status: http.StatusCreated})

	resp, err := c.Post(t.Context(), "/posts", strings.NewReader(`{"title":"x"}`))

	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{`{"title":"x"}`, `{"title":"x"}`}, rt.clone)
	assert.Equal(t, "application/json", rt.seen[0].Header.Get("Content-Type"))
}

func TestClient_PutSendsMethodAndBody(t *testing.T) {
	c, rt := testClient(t, 1, step{status: http.StatusOK})

	resp, err := c.Put(t.Context(), "posts/3", strings.NewReader(`{"title":"y"}`))

	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, rt.seen, 1)
	assert.Equal(t, http.MethodPut, rt.seen[0].Method)
	assert.Equal(t, "/posts/3", rt.seen[0].URL.Path)
	assert.Equal(t, `{"title":"y"}`, rt.clone[0])
}

func TestClient_GetHasNoContentType(t *testing.T) {
	c, rt := testClient(t, 1, step{status: http.StatusOK})

	resp, err := c.Get(t.Context(), "/posts")

	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, rt.seen[0].Header.Get("Content-Type"))
	assert.Equal(t, "application/json", rt.seen[0].Header.Get("Accept"))
}

func TestClient_CircuitOpensAndShortCircuits(t *testing.T) {
	c, rt := testClient(t, 1, step{status: http.StatusServiceUnavailable})

	for range 2 {
		_, err := c.Get(t.Context(), "/posts")
		require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	}

	assert.Equal(t, StateOpen, c.CircuitState())

	_, err := c.Get(t.Context(), "/posts")

	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, rt.calls())
}

func TestClient_FourHundredsDoNotTripCircuit(t *testing.T) {
	c, _ := testClient(t, 1, step{status: http.StatusBadRequest})

	for range 5 {
		resp, err := c.Get(t.Context(), "/posts")
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, StateClosed, c.CircuitState())
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	c, rt := testClient(t, 5, step{status: http.StatusServiceUnavailable})
	c.cfg.Retry.InitialInterval = time.Hour
	c.cfg.Retry.MaxInterval = time.Hour

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/posts")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, rt.calls())
}

func TestClient_PropagatesHeaders(t *testing.T) {
	var got http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL, ServiceName: "remote-quotes", UserAgent: "quotesync/1.2.3"})
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(t.Context(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-1")

	resp, err := c.Get(ctx, "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-1", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-1", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quotesync/1.2.3", got.Get("User-Agent"))
}

func TestClient_OmitsMissingIDs(t *testing.T) {
	c, rt := testClient(t, 1, step{status: http.StatusOK})

	resp, err := c.Get(t.Context(), "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, rt.seen[0].Header.Get(middleware.HeaderRequestID))
	assert.Empty(t, rt.seen[0].Header.Get(middleware.HeaderCorrelationID))
}

func TestClient_Backoff(t *testing.T) {
	c, _ := testClient(t, 5)
	c.cfg.Retry = config.RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      3,
	}

	assert.Equal(t, 100*time.Millisecond, c.backoff(1))
	assert.Equal(t, 300*time.Millisecond, c.backoff(2))
	assert.Equal(t, 900*time.Millisecond, c.backoff(3))
	assert.Equal(t, time.Second, c.backoff(4), "capped")

	c.cfg.Retry.JitterFactor = 0.5

	for range 50 {
		d := c.backoff(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"connection refused", refused, true},
		{"timeout", &net.DNSError{IsTimeout: true}, true},
		{"plain", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
