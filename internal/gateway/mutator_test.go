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

func newTestMutator(t *testing.T, serverURL string) *Mutator {
	t.Helper()
	cfg := shared.YouTubeConfig{MutationSlowMS: 1, MaxRetries: 2, BackoffBaseMS: 1}
	m, err := NewMutator(context.Background(), cfg, shared.OAuthConfig{}, shared.NewLogger(io.Discard),
		WithMutatorBaseURL(serverURL),
		WithMutatorHTTPClient(http.DefaultClient),
	)
	if err != nil {
		t.Fatalf("new mutator: %v", err)
	}
	m.sleep = func(context.Context, time.Duration) error { return nil }
	return m
}

func TestMutator(t *testing.T) {
	t.Run("insert returns the new playlist item id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var body struct {
				Snippet struct {
					PlaylistID string `json:"playlistId"`
					ResourceID struct {
						VideoID string `json:"videoId"`
					} `json:"resourceId"`
				} `json:"snippet"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body.Snippet.PlaylistID != "PL1" || body.Snippet.ResourceID.VideoID != "vid1" {
				t.Errorf("unexpected body %+v", body)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "item-1"})
		}))
		defer server.Close()

		m := newTestMutator(t, server.URL)
		itemID, err := m.InsertPlaylistItem(context.Background(), "PL1", "vid1")
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if itemID != "item-1" {
			t.Errorf("item id = %q, want item-1", itemID)
		}
	})

	t.Run("quota failure maps to exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(quotaError())
		}))
		defer server.Close()

		m := newTestMutator(t, server.URL)
		_, err := m.InsertPlaylistItem(context.Background(), "PL1", "vid1")
		if !errors.Is(err, shared.ErrQuotaExhausted) {
			t.Fatalf("expected ErrQuotaExhausted, got %v", err)
		}
	})

	t.Run("deleting a missing item maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"message": "Playlist item not found.",
					"errors":  []map[string]string{{"reason": "playlistItemNotFound"}},
				},
			})
		}))
		defer server.Close()

		m := newTestMutator(t, server.URL)
		err := m.DeletePlaylistItem(context.Background(), "gone")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("retries transient mutation failures", func(t *testing.T) {
		failures := 1
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if failures > 0 {
				failures--
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		m := newTestMutator(t, server.URL)
		if err := m.DeletePlaylistItem(context.Background(), "item-1"); err != nil {
			t.Fatalf("expected retry to recover, got %v", err)
		}
	})
}
