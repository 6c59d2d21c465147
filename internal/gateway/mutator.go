package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

// Mutator performs playlist writes with an OAuth credential. Unlike reads
// there is no key ring: a quota failure here means the daily mutation
// budget is spent and the applier must checkpoint and stop.
type Mutator struct {
	baseURL     string
	httpClient  *http.Client
	logger      *log.Logger
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	sleep       func(context.Context, time.Duration) error
}

// MutatorOption tweaks mutator construction, mostly for tests.
type MutatorOption func(*Mutator)

// WithMutatorHTTPClient swaps the underlying HTTP client, bypassing OAuth.
func WithMutatorHTTPClient(c *http.Client) MutatorOption {
	return func(m *Mutator) { m.httpClient = c }
}

// WithMutatorBaseURL points the mutator at a different API root.
func WithMutatorBaseURL(u string) MutatorOption {
	return func(m *Mutator) { m.baseURL = u }
}

// NewMutator builds the write-side client. The OAuth token must already
// exist at the configured path; minting one interactively is out of scope
// for a scheduled pipeline.
func NewMutator(ctx context.Context, yt shared.YouTubeConfig, oa shared.OAuthConfig, logger *log.Logger, opts ...MutatorOption) (*Mutator, error) {
	interval := yt.MutationInterval()
	if interval <= 0 {
		interval = time.Second
	}
	maxRetries := yt.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := yt.BackoffBase()
	if backoff <= 0 {
		backoff = time.Second
	}

	m := &Mutator{
		baseURL:     defaultBaseURL,
		logger:      shared.WithLogger(logger, "component", "mutator"),
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		maxRetries:  maxRetries,
		backoffBase: backoff,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.httpClient == nil {
		client, err := oauthClient(ctx, oa)
		if err != nil {
			return nil, err
		}
		m.httpClient = client
	}
	return m, nil
}

func oauthClient(ctx context.Context, oa shared.OAuthConfig) (*http.Client, error) {
	secrets, err := os.ReadFile(oa.ClientSecretsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read client secrets: %v", shared.ErrMissingCredentials, err)
	}
	conf, err := google.ConfigFromJSON(secrets, "https://www.googleapis.com/auth/youtube")
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secrets: %v", shared.ErrMissingCredentials, err)
	}

	tokenData, err := os.ReadFile(oa.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read oauth token: %v", shared.ErrMissingCredentials, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: parse oauth token: %v", shared.ErrMissingCredentials, err)
	}

	return conf.Client(ctx, &token), nil
}

// InsertPlaylistItem appends a video to the end of a playlist and returns
// the new playlist item ID.
func (m *Mutator) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error) {
	body := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"resourceId": map[string]string{
				"kind":    "youtube#video",
				"videoId": videoID,
			},
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	err := m.do(ctx, http.MethodPost, "playlistItems?part=snippet", body, &resp)
	if err != nil {
		return "", fmt.Errorf("insert %s into %s: %w", videoID, playlistID, err)
	}
	return resp.ID, nil
}

// DeletePlaylistItem removes one playlist entry by its playlist item ID.
func (m *Mutator) DeletePlaylistItem(ctx context.Context, playlistItemID string) error {
	err := m.do(ctx, http.MethodDelete, "playlistItems?id="+playlistItemID, nil, nil)
	if err != nil {
		return fmt.Errorf("delete playlist item %s: %w", playlistItemID, err)
	}
	return nil
}

func (m *Mutator) do(ctx context.Context, method, endpoint string, body, result any) error {
	var lastErr error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			delay := m.backoffBase << (attempt - 1)
			m.logger.Debug("retrying mutation", "endpoint", endpoint, "attempt", attempt, "delay", delay)
			if err := m.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := m.doOnce(ctx, method, endpoint, body, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if apiErr.transient() {
				continue
			}
			return m.mapError(apiErr)
		}
		if errors.Is(err, shared.ErrTransient) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s after %d retries: %v", shared.ErrTransient, endpoint, m.maxRetries, lastErr)
}

func (m *Mutator) doOnce(ctx context.Context, method, endpoint string, body, result any) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+"/"+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", shared.ErrTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, data)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

// mapError converts mutation failures into the shared taxonomy. Quota here
// is terminal for the day, not a rotation signal.
func (m *Mutator) mapError(apiErr *apiError) error {
	switch {
	case apiErr.keyExhausted():
		return fmt.Errorf("%w: mutation budget spent: %v", shared.ErrQuotaExhausted, apiErr)
	case apiErr.Status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", shared.ErrAuthInvalid, apiErr)
	case apiErr.Status == http.StatusNotFound,
		apiErr.hasReason("playlistItemNotFound", "videoNotFound"):
		return fmt.Errorf("%w: %v", shared.ErrNotFound, apiErr)
	}
	return apiErr
}
