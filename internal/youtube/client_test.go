package youtube_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"povcat/internal/youtube"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *youtube.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := youtube.New("test-key", server.URL, youtube.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := youtube.New(" ", "http://example.invalid"); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestResolveChannelIDPassesThroughChannelIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL)
	})
	id, err := client.ResolveChannelID(context.Background(), "UCabc123")
	if err != nil || id != "UCabc123" {
		t.Fatalf("got %q, %v", id, err)
	}
}

func TestResolveChannelIDByHandle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("forHandle"); got != "@lim-csgopov" {
			t.Fatalf("unexpected handle %q", got)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatal("missing api key")
		}
		writeJSON(t, w, map[string]any{"items": []map[string]any{{"id": "UClim"}}})
	})
	id, err := client.ResolveChannelID(context.Background(), "@lim-csgopov")
	if err != nil || id != "UClim" {
		t.Fatalf("got %q, %v", id, err)
	}
}

func TestResolveChannelIDFallsBackToSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			writeJSON(t, w, map[string]any{"items": []any{}})
		case "/search":
			if got := r.URL.Query().Get("q"); got != "NebulaCS2" {
				t.Fatalf("unexpected query %q", got)
			}
			writeJSON(t, w, map[string]any{"items": []map[string]any{{"id": map[string]any{"channelId": "UCneb"}}}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	id, err := client.ResolveChannelID(context.Background(), "@NebulaCS2")
	if err != nil || id != "UCneb" {
		t.Fatalf("got %q, %v", id, err)
	}
}

func TestResolveChannelIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"items": []any{}})
	})
	_, err := client.ResolveChannelID(context.Background(), "@ghost")
	if !errors.Is(err, youtube.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadsPlaylistID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("part") != "contentDetails" || r.URL.Query().Get("id") != "UClim" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(t, w, map[string]any{"items": []map[string]any{{
			"contentDetails": map[string]any{"relatedPlaylists": map[string]any{"uploads": "UUlim"}},
		}}})
	})
	id, err := client.UploadsPlaylistID(context.Background(), "UClim")
	if err != nil || id != "UUlim" {
		t.Fatalf("got %q, %v", id, err)
	}
}

func TestPlaylistPageParsesItemsAndToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("playlistId") != "UUlim" || q.Get("maxResults") != "50" || q.Get("pageToken") != "tok1" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(t, w, map[string]any{
			"nextPageToken": "tok2",
			"items": []map[string]any{
				{"snippet": map[string]any{"title": "s1mple POV mirage", "publishedAt": "2026-05-01T10:00:00Z", "resourceId": map[string]any{"videoId": "v1"}}},
				{"snippet": map[string]any{"title": "broken date", "publishedAt": "yesterday", "resourceId": map[string]any{"videoId": "v2"}}},
			},
		})
	})
	page, err := client.PlaylistPage(context.Background(), "UUlim", "tok1")
	if err != nil {
		t.Fatalf("PlaylistPage returned error: %v", err)
	}
	if page.NextPageToken != "tok2" {
		t.Fatalf("unexpected token %q", page.NextPageToken)
	}
	if len(page.Items) != 1 || page.Items[0].VideoID != "v1" || page.Items[0].PublishedAt.Day() != 1 {
		t.Fatalf("unexpected items %+v", page.Items)
	}
}

func TestDurationsBatchesByFifty(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		if len(ids) > 50 {
			t.Fatalf("batch too large: %d", len(ids))
		}
		items := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			items = append(items, map[string]any{"id": id, "contentDetails": map[string]any{"duration": "PT1M30S"}})
		}
		writeJSON(t, w, map[string]any{"items": items})
	})

	ids := make([]string, 0, 120)
	for i := range 120 {
		ids = append(ids, fmt.Sprintf("v%d", i))
	}
	durations, err := client.Durations(context.Background(), ids)
	if err != nil {
		t.Fatalf("Durations returned error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 batched calls, got %d", calls.Load())
	}
	if len(durations) != 120 || durations["v119"] != 90 {
		t.Fatalf("unexpected durations: len=%d v119=%d", len(durations), durations["v119"])
	}
}

func TestNonOKStatusReturnsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := client.UploadsPlaylistID(context.Background(), "UClim")
	var statusErr *youtube.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
}
