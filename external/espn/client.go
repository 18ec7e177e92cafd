// Package espn talks to ESPN's public site API and normalizes its
// payloads into the shapes the sync layer reconciles against.
package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/scorelinehq/scoreline/internal/platform/cache"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/platform/resilience"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	defaultTimeout = 10 * time.Second

	// Cache windows keyed by how fast the underlying data moves.
	liveTTL      = time.Minute
	scheduledTTL = time.Hour
	finalTTL     = 24 * time.Hour
	referenceTTL = 7 * 24 * time.Hour

	defaultPageLimit = 100
	maxBodyBytes     = 6 << 20
)

var errESPNTransient = crerr.New("espn transient failure")

type leagueRoute struct {
	sport string
	slug  string
}

var leagueRoutes = map[string]leagueRoute{
	"NFL":   {sport: "football", slug: "nfl"},
	"NBA":   {sport: "basketball", slug: "nba"},
	"MLB":   {sport: "baseball", slug: "mlb"},
	"NHL":   {sport: "hockey", slug: "nhl"},
	"NCAAF": {sport: "football", slug: "college-football"},
	"NCAAB": {sport: "basketball", slug: "mens-college-basketball"},
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	// PageLimit caps the events/teams returned per list request.
	// Zero means the default of 100.
	PageLimit      int
	Retry          resilience.RetryPolicy
	Cache          *cache.Store
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	pageLimit      int
	retry          resilience.RetryPolicy
	cache          *cache.Store
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.SportsDataProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewStore()
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		pageLimit:      pageLimit,
		retry:          resilience.NormalizeRetryPolicy(cfg.Retry),
		cache:          store,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) route(leagueAbbr string) (leagueRoute, error) {
	route, ok := leagueRoutes[strings.ToUpper(strings.TrimSpace(leagueAbbr))]
	if !ok {
		return leagueRoute{}, fmt.Errorf("%w: %s", usecase.ErrUnsupportedLeague, leagueAbbr)
	}
	return route, nil
}

// getJSON fetches path into target, caching the raw body under the
// request key for ttl.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, ttl time.Duration, target any) error {
	raw, fromCache, err := c.fetch(ctx, path, query)
	if err != nil {
		return err
	}
	if !fromCache {
		c.cache.Set(ctx, requestKey(path, query), raw, ttl)
	}
	return decode(raw, target)
}

// fetch returns the raw response body for path, from cache when
// present. The caller owns caching on a miss: the right TTL may depend
// on the payload's content (live vs. final games), which is unknown
// until after the fetch.
func (c *Client) fetch(ctx context.Context, path string, query map[string]string) ([]byte, bool, error) {
	key := requestKey(path, query)
	if cached, ok := c.cache.Get(ctx, key); ok {
		if raw, ok := cached.([]byte); ok {
			c.logger.DebugContext(ctx, "espn cache hit", "path", path)
			return raw, true, nil
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request",
				"path", path, "state", c.breaker.State())
			return nil, false, fmt.Errorf("%w: upstream is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, c.requestURL(path, query))
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, false, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, false, nil
}

func (c *Client) requestURL(path string, query map[string]string) string {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errESPNTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errESPNTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: %v: status=429", usecase.ErrRateLimited, errESPNTransient)
			case c.retry.IsRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: status=%d body=%s", errESPNTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("%w: status=%d body=%s", usecase.ErrUpstream, resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == attempts {
			break
		}
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: request failed", usecase.ErrUpstream)
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	if !crerr.Is(lastErr, usecase.ErrRateLimited) && !crerr.Is(lastErr, usecase.ErrUpstream) {
		lastErr = fmt.Errorf("%w: %v", usecase.ErrUpstream, lastErr)
	}
	return nil, lastErr
}

// Rate limiting and transient transport failures trip the breaker;
// upstream 4xx rejections do not.
func isCircuitFailure(err error) bool {
	return crerr.Is(err, errESPNTransient) || crerr.Is(err, usecase.ErrRateLimited)
}

func requestKey(path string, query map[string]string) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("espn:")
	b.WriteString(path)
	for _, key := range keys {
		b.WriteByte(':')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(query[key])
	}
	return b.String()
}

func decode(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode espn payload: %v", usecase.ErrUpstream, err)
	}
	return nil
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
