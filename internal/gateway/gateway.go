package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Gateway issues read requests against the YouTube Data API, rotating
// through the configured key ring as keys exhaust their quota. It is not
// safe for concurrent use; the pipeline runs its stages sequentially.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	keys      []string
	active    int
	retired   []bool
	exhausted bool

	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	sleep       func(context.Context, time.Duration) error

	region string

	// Calls counts HTTP requests actually issued, for run reporting.
	Calls int
}

// Option tweaks gateway construction, mostly for tests.
type Option func(*Gateway)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithBaseURL points the gateway at a different API root.
func WithBaseURL(u string) Option {
	return func(g *Gateway) { g.baseURL = u }
}

// New builds a gateway from the YouTube configuration section.
func New(cfg shared.YouTubeConfig, logger *log.Logger, opts ...Option) (*Gateway, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("%w: no API keys configured", shared.ErrMissingCredentials)
	}

	interval := cfg.SleepInterval()
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := cfg.BackoffBase()
	if backoff <= 0 {
		backoff = time.Second
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	g := &Gateway{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      shared.WithLogger(logger, "component", "gateway"),
		keys:        cfg.APIKeys,
		retired:     make([]bool, len(cfg.APIKeys)),
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		maxRetries:  maxRetries,
		backoffBase: backoff,
		sleep:       sleepCtx,
		region:      cfg.Region,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// apiError is the parsed error envelope of a failed Data API response.
type apiError struct {
	Status  int
	Message string
	Reasons []string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("youtube API error (status %d): %s", e.Status, e.Message)
}

func (e *apiError) hasReason(want ...string) bool {
	for _, r := range e.Reasons {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}

// keyExhausted reports whether the error means the current key's daily
// budget is spent, as opposed to a bad request or a broken credential.
func (e *apiError) keyExhausted() bool {
	return e.Status == http.StatusForbidden &&
		e.hasReason("quotaExceeded", "dailyLimitExceeded", "userRateLimitExceeded")
}

func (e *apiError) transient() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseAPIError(status int, body []byte) *apiError {
	e := &apiError{Status: status, Message: http.StatusText(status)}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			e.Message = envelope.Error.Message
		}
		for _, inner := range envelope.Error.Errors {
			e.Reasons = append(e.Reasons, inner.Reason)
		}
	}
	return e
}

// KeysRemaining reports how many keys still have budget this run.
func (g *Gateway) KeysRemaining() int {
	n := 0
	for _, dead := range g.retired {
		if !dead {
			n++
		}
	}
	return n
}

func (g *Gateway) retireActiveKey() {
	g.retired[g.active] = true
	g.logger.Warn("api key exhausted, rotating", "key_index", g.active, "remaining", g.KeysRemaining())

	for i := range g.keys {
		if !g.retired[i] {
			g.active = i
			return
		}
	}
	g.exhausted = true
}

// get performs one paced, retried, key-rotated GET against the Data API and
// decodes the response into result.
func (g *Gateway) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	if g.exhausted {
		return fmt.Errorf("%w: all %d api keys spent", shared.ErrQuotaExhausted, len(g.keys))
	}

	for {
		err := g.getWithKey(ctx, endpoint, params, g.keys[g.active], result)
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.keyExhausted() {
			g.retireActiveKey()
			if g.exhausted {
				return fmt.Errorf("%w: all %d api keys spent", shared.ErrQuotaExhausted, len(g.keys))
			}
			continue
		}
		return err
	}
}

// getWithKey retries transient failures with exponential backoff but never
// switches keys; rotation is the caller's concern.
func (g *Gateway) getWithKey(ctx context.Context, endpoint string, params url.Values, key string, result any) error {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := g.backoffBase << (attempt - 1)
			g.logger.Debug("retrying after transient failure", "endpoint", endpoint, "attempt", attempt, "delay", delay)
			if err := g.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := g.doGet(ctx, endpoint, params, key, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.transient() {
			continue
		}
		return g.mapError(err)
	}
	return fmt.Errorf("%w: %s after %d retries: %v", shared.ErrTransient, endpoint, g.maxRetries, lastErr)
}

func (g *Gateway) doGet(ctx context.Context, endpoint string, params url.Values, key string, result any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	g.Calls++
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", shared.ErrTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

// mapError converts non-retryable API errors into the shared taxonomy.
func (g *Gateway) mapError(err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized,
		apiErr.hasReason("keyInvalid", "forbidden", "accessNotConfigured"):
		return fmt.Errorf("%w: %v", shared.ErrAuthInvalid, apiErr)
	case apiErr.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %v", shared.ErrNotFound, apiErr)
	}
	return err
}
