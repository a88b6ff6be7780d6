package whitelist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"povcat/internal/whitelist"
)

func sampleWhitelist() *whitelist.Whitelist {
	w := whitelist.New()
	w.Add("ZywOo", "Vitality")
	w.Add("s1mple", "")
	return w
}

func assertSample(t *testing.T, w *whitelist.Whitelist) {
	t.Helper()
	if w.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", w.Len())
	}
	if entry, ok := w.Lookup("zywoo"); !ok || entry.Team != "Vitality" || entry.Nickname != "ZywOo" {
		t.Fatalf("unexpected ZywOo entry %+v", entry)
	}
	if entry, ok := w.Lookup("S1MPLE"); !ok || entry.Team != "" {
		t.Fatalf("expected teamless s1mple, got %+v ok=%v", entry, ok)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "whitelist.json")
	store := whitelist.NewFileStore(path)

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected missing snapshot, got ok=%v err=%v", ok, err)
	}

	fetchedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Save(ctx, whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: fetchedAt}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	snapshot, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load returned ok=%v err=%v", ok, err)
	}
	assertSample(t, snapshot.Whitelist)
	if !snapshot.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("expected fetched_at from mtime %v, got %v", fetchedAt, snapshot.FetchedAt)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	want := "{\n  \"ZywOo\": \"Vitality\",\n  \"s1mple\": null\n}\n"
	if string(raw) != want {
		t.Fatalf("unexpected file content:\n%s", raw)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := whitelist.NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	store := whitelist.NewRedisStore(client, "povcat:whitelist")

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected missing snapshot, got ok=%v err=%v", ok, err)
	}

	fetchedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Save(ctx, whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: fetchedAt}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if ttl := server.TTL("povcat:whitelist"); ttl != 0 {
		t.Fatalf("expected no key expiry, got %v", ttl)
	}

	snapshot, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load returned ok=%v err=%v", ok, err)
	}
	assertSample(t, snapshot.Whitelist)
	if !snapshot.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("unexpected fetched_at %v", snapshot.FetchedAt)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { client.Close() })

	if _, _, err := whitelist.NewRedisStore(client, "k").Load(context.Background()); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
