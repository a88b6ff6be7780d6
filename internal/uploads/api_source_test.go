package uploads_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"povcat/internal/logging"
	"povcat/internal/uploads"
	"povcat/internal/youtube"
)

type fakeAPI struct {
	channelIDs   map[string]string
	playlists    map[string]string
	pages        map[string]*youtube.Page
	pageErr      map[string]error
	durations    map[string]int
	durationErr  error
	pageRequests []string
}

func (f *fakeAPI) ResolveChannelID(_ context.Context, handle string) (string, error) {
	if id, ok := f.channelIDs[handle]; ok {
		return id, nil
	}
	return "", youtube.ErrNotFound
}

func (f *fakeAPI) UploadsPlaylistID(_ context.Context, channelID string) (string, error) {
	if id, ok := f.playlists[channelID]; ok {
		return id, nil
	}
	return "", youtube.ErrNotFound
}

func (f *fakeAPI) PlaylistPage(_ context.Context, playlistID, token string) (*youtube.Page, error) {
	key := playlistID + "|" + token
	f.pageRequests = append(f.pageRequests, key)
	if err := f.pageErr[key]; err != nil {
		return nil, err
	}
	if page, ok := f.pages[key]; ok {
		return page, nil
	}
	return &youtube.Page{}, nil
}

func (f *fakeAPI) Durations(_ context.Context, ids []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range ids {
		if d, ok := f.durations[id]; ok {
			out[id] = d
		}
	}
	return out, f.durationErr
}

func item(id, title string) youtube.PlaylistItem {
	return youtube.PlaylistItem{VideoID: id, Title: title, PublishedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
}

func collect(t *testing.T, source uploads.Source, channel uploads.Channel) ([]uploads.UploadRecord, error) {
	t.Helper()
	var records []uploads.UploadRecord
	for record, err := range source.Uploads(context.Background(), channel) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func TestAPISourcePagesUntilLastPage(t *testing.T) {
	api := &fakeAPI{
		channelIDs: map[string]string{"@lim": "UClim"},
		playlists:  map[string]string{"UClim": "UUlim"},
		pages: map[string]*youtube.Page{
			"UUlim|":     {Items: []youtube.PlaylistItem{item("a", "A"), item("b", "B")}, NextPageToken: "p2"},
			"UUlim|p2":   {Items: []youtube.PlaylistItem{item("c", "C")}},
			"UUlim|p999": {Items: []youtube.PlaylistItem{item("z", "never")}},
		},
	}
	source := uploads.NewAPISource(api, logging.NewNop())

	records, err := collect(t, source, uploads.Channel{Label: "lim", Handle: "@lim"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 || records[2].ID != "c" {
		t.Fatalf("unexpected records %+v", records)
	}
	for _, record := range records {
		if record.ChannelLabel != "lim" || record.DurationSeconds != uploads.UnknownDuration {
			t.Fatalf("unexpected record %+v", record)
		}
	}
}

func TestAPISourceStopsWhenConsumerStops(t *testing.T) {
	api := &fakeAPI{
		channelIDs: map[string]string{"@lim": "UClim"},
		playlists:  map[string]string{"UClim": "UUlim"},
		pages: map[string]*youtube.Page{
			"UUlim|":   {Items: []youtube.PlaylistItem{item("a", "A")}, NextPageToken: "p2"},
			"UUlim|p2": {Items: []youtube.PlaylistItem{item("b", "B")}},
		},
	}
	source := uploads.NewAPISource(api, nil)
	for range source.Uploads(context.Background(), uploads.Channel{Label: "lim", Handle: "@lim"}) {
		break
	}
	if len(api.pageRequests) != 1 {
		t.Fatalf("expected a single page request, got %v", api.pageRequests)
	}
}

func TestAPISourceUnresolvableChannel(t *testing.T) {
	source := uploads.NewAPISource(&fakeAPI{}, nil)
	records, err := collect(t, source, uploads.Channel{Label: "ghost", Handle: "@ghost"})
	if !errors.Is(err, uploads.ErrChannelUnavailable) {
		t.Fatalf("expected ErrChannelUnavailable, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestAPISourcePageErrorKeepsEarlierRecords(t *testing.T) {
	api := &fakeAPI{
		channelIDs: map[string]string{"@lim": "UClim"},
		playlists:  map[string]string{"UClim": "UUlim"},
		pages: map[string]*youtube.Page{
			"UUlim|": {Items: []youtube.PlaylistItem{item("a", "A")}, NextPageToken: "p2"},
		},
		pageErr: map[string]error{"UUlim|p2": errors.New("quota exceeded")},
	}
	records, err := collect(t, uploads.NewAPISource(api, nil), uploads.Channel{Label: "lim", Handle: "@lim"})
	if err == nil || errors.Is(err, uploads.ErrChannelUnavailable) {
		t.Fatalf("expected page error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected first page records to survive, got %d", len(records))
	}
}

func TestAPISourceRepeatedTokenEndsEnumeration(t *testing.T) {
	api := &fakeAPI{
		channelIDs: map[string]string{"@lim": "UClim"},
		playlists:  map[string]string{"UClim": "UUlim"},
		pages: map[string]*youtube.Page{
			"UUlim|":   {Items: []youtube.PlaylistItem{item("a", "A")}, NextPageToken: "p2"},
			"UUlim|p2": {Items: []youtube.PlaylistItem{item("b", "B")}, NextPageToken: "p2"},
		},
	}
	records, err := collect(t, uploads.NewAPISource(api, nil), uploads.Channel{Label: "lim", Handle: "@lim"})
	if err == nil {
		t.Fatal("expected loop detection error")
	}
	if len(records) != 2 {
		t.Fatalf("expected two records before loop detection, got %d", len(records))
	}
}

func TestAPISourceDurationsToleratesFailure(t *testing.T) {
	api := &fakeAPI{durations: map[string]int{"a": 30}, durationErr: errors.New("boom")}
	got := uploads.NewAPISource(api, nil).Durations(context.Background(), []string{"a", "b"})
	if got["a"] != 30 {
		t.Fatalf("expected partial durations to survive, got %v", got)
	}
	if _, ok := got["b"]; ok {
		t.Fatalf("expected b to stay unknown, got %v", got)
	}
}
