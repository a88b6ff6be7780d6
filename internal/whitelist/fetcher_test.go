package whitelist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"povcat/internal/logging"
	"povcat/internal/outcome"
	"povcat/internal/ranking"
	"povcat/internal/whitelist"
)

type fakeRanking struct {
	teams []ranking.Team
	err   error
	calls int
}

func (f *fakeRanking) TopTeams(context.Context, int) ([]ranking.Team, error) {
	f.calls++
	return f.teams, f.err
}

type memoryStore struct {
	snapshot whitelist.Snapshot
	ok       bool
	saves    int
}

func (m *memoryStore) Load(context.Context) (whitelist.Snapshot, bool, error) {
	return m.snapshot, m.ok, nil
}

func (m *memoryStore) Save(_ context.Context, snapshot whitelist.Snapshot) error {
	m.snapshot, m.ok = snapshot, true
	m.saves++
	return nil
}

var runTime = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestFetchUsesFreshSnapshotWithoutRanking(t *testing.T) {
	source := &fakeRanking{}
	store := &memoryStore{snapshot: whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: runTime.Add(-time.Hour)}, ok: true}
	fetcher := whitelist.NewFetcher(source, store, 24*time.Hour, 30, logging.NewNop())

	result := fetcher.Fetch(context.Background(), runTime, false)
	if result.Status != outcome.StatusOK || result.Value.Len() != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if source.calls != 0 {
		t.Fatalf("expected no ranking call, got %d", source.calls)
	}
}

func TestFetchRefreshBypassesTTL(t *testing.T) {
	source := &fakeRanking{teams: []ranking.Team{{Name: "Spirit", Players: []string{"donk"}}}}
	store := &memoryStore{snapshot: whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: runTime.Add(-time.Hour)}, ok: true}
	fetcher := whitelist.NewFetcher(source, store, 24*time.Hour, 30, nil)

	result := fetcher.Fetch(context.Background(), runTime, true)
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v", result.Status)
	}
	if _, ok := result.Value.Lookup("donk"); !ok {
		t.Fatal("expected live whitelist")
	}
	if store.saves != 1 || !store.snapshot.FetchedAt.Equal(runTime) {
		t.Fatalf("expected live snapshot persisted at run time, saves=%d at=%v", store.saves, store.snapshot.FetchedAt)
	}
}

func TestFetchStaleSnapshotFetchesLive(t *testing.T) {
	source := &fakeRanking{teams: []ranking.Team{{Name: "Spirit", Players: []string{"donk"}}}}
	store := &memoryStore{snapshot: whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: runTime.Add(-48 * time.Hour)}, ok: true}
	result := whitelist.NewFetcher(source, store, 24*time.Hour, 30, nil).Fetch(context.Background(), runTime, false)
	if !result.IsOK() || source.calls != 1 {
		t.Fatalf("expected live fetch, status=%v calls=%d", result.Status, source.calls)
	}
}

func TestFetchFailureFallsBackToSnapshot(t *testing.T) {
	source := &fakeRanking{err: errors.New("503")}
	store := &memoryStore{snapshot: whitelist.Snapshot{Whitelist: sampleWhitelist(), FetchedAt: runTime.Add(-72 * time.Hour)}, ok: true}

	result := whitelist.NewFetcher(source, store, 24*time.Hour, 30, nil).Fetch(context.Background(), runTime, false)
	if result.Status != outcome.StatusDegraded {
		t.Fatalf("expected degraded, got %v", result.Status)
	}
	if result.Value.Len() != 2 || result.Err == nil || result.Reason == "" {
		t.Fatalf("unexpected degraded result %+v", result)
	}
	if store.saves != 0 {
		t.Fatal("degraded fetch must not overwrite the snapshot")
	}
}

func TestFetchFailureWithoutSnapshotIsEmptyDegraded(t *testing.T) {
	source := &fakeRanking{err: errors.New("timeout")}
	result := whitelist.NewFetcher(source, &memoryStore{}, 24*time.Hour, 30, nil).Fetch(context.Background(), runTime, false)
	if result.Status != outcome.StatusDegraded {
		t.Fatalf("expected degraded, got %v", result.Status)
	}
	if result.Value == nil || result.Value.Len() != 0 {
		t.Fatalf("expected empty whitelist, got %+v", result.Value)
	}
}

func TestFetchRosterlessRankingIsFailure(t *testing.T) {
	source := &fakeRanking{teams: []ranking.Team{{Name: "Empty"}}}
	result := whitelist.NewFetcher(source, nil, 0, 30, nil).Fetch(context.Background(), runTime, false)
	if result.Status != outcome.StatusDegraded {
		t.Fatalf("expected degraded for rosterless ranking, got %v", result.Status)
	}
}
