package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scorelinehq/scoreline/internal/platform/cache"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/platform/resilience"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

func newTestClient(srv *httptest.Server, cfg ClientConfig) *Client {
	cfg.HTTPClient = srv.Client()
	cfg.BaseURL = srv.URL
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Retry.Backoff == nil {
		cfg.Retry.Backoff = func(int) time.Duration { return 0 }
	}
	return NewClient(cfg)
}

func TestClient_RetriesTransientStatusThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sports":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{
		Retry: resilience.RetryPolicy{MaxAttempts: 3},
	})

	teams, err := client.FetchTeams(context.Background(), "NFL")
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("unexpected team count: got=%d want=0", len(teams))
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("unexpected request count: got=%d want=3", got)
	}
}

func TestClient_RateLimitedMapsToSentinel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{
		Retry: resilience.RetryPolicy{MaxAttempts: 2},
	})

	_, err := client.FetchTeams(context.Background(), "NFL")
	if !errors.Is(err, usecase.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{
		Retry: resilience.RetryPolicy{MaxAttempts: 3},
	})

	_, err := client.FetchTeams(context.Background(), "NFL")
	if !errors.Is(err, usecase.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("unexpected request count: got=%d want=1", got)
	}
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{
		Retry: resilience.RetryPolicy{MaxAttempts: 1},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.FetchTeams(ctx, "NFL"); err == nil {
			t.Fatalf("expected failure on call %d", i+1)
		}
	}

	_, err := client.FetchTeams(ctx, "NFL")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("open circuit should not reach upstream: got=%d requests, want=2", got)
	}
}

func TestClient_ServesRepeatRequestsFromCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sports":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{Cache: cache.NewStore()})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.FetchTeams(ctx, "NFL"); err != nil {
			t.Fatalf("fetch teams call %d: %v", i+1, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected one upstream request, got=%d", got)
	}
}

func TestClient_PageLimitOverridesDefault(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("unexpected limit param: got=%s want=25", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sports":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{PageLimit: 25})
	if _, err := client.FetchTeams(context.Background(), "NFL"); err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
}

func TestClient_MalformedPayloadMapsToUpstream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>maintenance page</html>`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})

	_, err := client.FetchTeams(context.Background(), "NFL")
	if !errors.Is(err, usecase.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_UnsupportedLeague(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})

	_, err := client.FetchTeams(context.Background(), "XFL")
	if !errors.Is(err, usecase.ErrUnsupportedLeague) {
		t.Fatalf("expected ErrUnsupportedLeague, got %v", err)
	}
}

func TestRequestKey_SortsQueryParameters(t *testing.T) {
	t.Parallel()

	a := requestKey("/football/nfl/scoreboard", map[string]string{"limit": "100", "dates": "20260829"})
	b := requestKey("/football/nfl/scoreboard", map[string]string{"dates": "20260829", "limit": "100"})
	if a != b {
		t.Fatalf("keys differ for identical queries: %s vs %s", a, b)
	}
	want := "espn:/football/nfl/scoreboard:dates=20260829:limit=100"
	if a != want {
		t.Fatalf("unexpected key: got=%s want=%s", a, want)
	}
}
