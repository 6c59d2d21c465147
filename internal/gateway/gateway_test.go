package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

func testConfig(keys ...string) shared.YouTubeConfig {
	return shared.YouTubeConfig{
		APIKeys:       keys,
		Region:        "US",
		SleepMS:       1,
		MaxRetries:    2,
		BackoffBaseMS: 1,
	}
}

func newTestGateway(t *testing.T, serverURL string, keys ...string) *Gateway {
	t.Helper()
	g, err := New(testConfig(keys...), shared.NewLogger(io.Discard), WithBaseURL(serverURL))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	g.sleep = func(context.Context, time.Duration) error { return nil }
	return g
}

func quotaError() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message": "The request cannot be completed because you have exceeded your quota.",
			"errors":  []map[string]string{{"reason": "quotaExceeded"}},
		},
	}
}

func TestGatewayKeyRotation(t *testing.T) {
	t.Run("rotates to next key when one exhausts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") == "spent" {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(quotaError())
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL, "spent", "fresh")

		if _, err := g.SearchChannels(context.Background(), "artist"); err != nil {
			t.Fatalf("expected rotation to recover, got %v", err)
		}
		if g.KeysRemaining() != 1 {
			t.Errorf("expected 1 key remaining, got %d", g.KeysRemaining())
		}
		// One request on the spent key, one on the fresh key.
		if g.Calls != 2 {
			t.Errorf("calls = %d, want 2", g.Calls)
		}
	})

	t.Run("signals quota exhausted when every key is spent", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(quotaError())
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL, "a", "b")

		_, err := g.SearchChannels(context.Background(), "artist")
		if !errors.Is(err, shared.ErrQuotaExhausted) {
			t.Fatalf("expected ErrQuotaExhausted, got %v", err)
		}

		// Once exhausted, further calls short-circuit without HTTP.
		before := calls
		if _, err := g.Channel(context.Background(), "UC123"); !errors.Is(err, shared.ErrQuotaExhausted) {
			t.Errorf("expected sticky ErrQuotaExhausted, got %v", err)
		}
		if calls != before {
			t.Errorf("exhausted gateway still issued %d requests", calls-before)
		}
	})
}

func TestGatewayRetries(t *testing.T) {
	t.Run("retries transient failures with backoff", func(t *testing.T) {
		failures := 2
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if failures > 0 {
				failures--
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL, "k")
		if _, err := g.SearchChannels(context.Background(), "artist"); err != nil {
			t.Fatalf("expected retries to recover, got %v", err)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL, "k")
		_, err := g.SearchChannels(context.Background(), "artist")
		if !errors.Is(err, shared.ErrTransient) {
			t.Fatalf("expected ErrTransient, got %v", err)
		}
	})

	t.Run("does not retry auth failures", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL, "k")
		_, err := g.SearchChannels(context.Background(), "artist")
		if !errors.Is(err, shared.ErrAuthInvalid) {
			t.Fatalf("expected ErrAuthInvalid, got %v", err)
		}
		if calls != 1 {
			t.Errorf("auth failure retried %d times", calls-1)
		}
	})
}

func TestVideoDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id": "vid1",
					"snippet": map[string]any{
						"title":        "Artist - Song (Official Music Video)",
						"channelId":    "UC1",
						"channelTitle": "ArtistVEVO",
						"publishedAt":  "2019-06-01T00:00:00Z",
					},
					"contentDetails": map[string]any{
						"duration":   "PT3M42S",
						"definition": "hd",
					},
					"status": map[string]any{"uploadStatus": "processed", "privacyStatus": "public"},
				},
				{
					"id": "vid2",
					"snippet": map[string]any{
						"title":       "Artist - Gone",
						"publishedAt": "2020-01-01T00:00:00Z",
					},
					"contentDetails": map[string]any{
						"duration": "PT4M",
						"regionRestriction": map[string]any{
							"blocked": []string{"US"},
						},
					},
					"status": map[string]any{"privacyStatus": "private"},
				},
			},
		})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL, "k")
	videos, err := g.VideoDetails(context.Background(), []string{"vid1", "vid2"})
	if err != nil {
		t.Fatalf("video details: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}

	v := videos[0]
	if v.Duration != 222 {
		t.Errorf("duration = %d, want 222", v.Duration)
	}
	if v.PublishedYear != 2019 {
		t.Errorf("published year = %d, want 2019", v.PublishedYear)
	}
	if v.Definition != "hd" || v.Unavailable || v.RegionBlocked {
		t.Errorf("unexpected flags on vid1: %+v", v)
	}

	if !videos[1].Unavailable {
		t.Error("private video should be flagged unavailable")
	}
	if !videos[1].RegionBlocked {
		t.Error("US-blocked video should be flagged region blocked")
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT3M42S", 222},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT4M", 240},
		{"P1DT1S", 86401},
		{"", 0},
		{"garbage", 0},
	}

	for _, tc := range tests {
		if got := ParseISODuration(tc.in); got != tc.want {
			t.Errorf("ParseISODuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
