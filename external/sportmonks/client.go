package sportmonks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/matchpulse/sportsync/internal/platform/logging"
	"github.com/matchpulse/sportsync/internal/platform/resilience"
)

const (
	defaultBaseURL     = "https://api.sportmonks.com/v3/football"
	backoffInitial     = time.Second
	backoffCap         = 16 * time.Second
	responseBodyLimit  = 6 << 20
	populatePageSize   = 1000
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = crerr.New("sportmonks circuit is open")

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	Token           string
	Timeout         time.Duration
	MaxRetries      int
	RequestsPerHour int
	Populate        bool
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// Client is the rate-limited SportMonks v3 HTTP client. One instance
// is shared by every sync stream so the limiter enforces a single
// global outbound rate.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	populate       bool
	limiter        *Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		populate:       cfg.Populate,
		limiter:        NewLimiter(cfg.RequestsPerHour),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// get issues one authenticated GET and returns the raw body. Transient
// failures retry with exponential backoff; the limiter is consulted
// before every attempt so retries respect the global rate too.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, ErrCircuitOpen
		}
	}

	values := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	backoff := backoffInitial
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("authorization", c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, &ProviderError{Status: resp.StatusCode, Body: abbreviateBody(raw)}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		c.logger.DebugContext(ctx, "sportmonks retrying request",
			"url", redactAPIURL(fullURL), "attempt", attempt+1, "backoff", backoff, "error", lastErr)
		if err := sleepContext(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if backoff > backoffCap {
			backoff = backoffCap
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, &TransportError{Err: lastErr}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
