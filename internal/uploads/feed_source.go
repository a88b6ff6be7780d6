package uploads

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"povcat/internal/logging"
)

// FeedSource reads a channel's public Atom feed. It needs no API key but only
// lists the most recent uploads. Durations are unknown unless a VideoLookup
// probe is configured.
type FeedSource struct {
	feedURL    string
	pageBase   string
	httpClient *http.Client
	parser     *gofeed.Parser
	lookup     VideoLookup
	maxProbes  int
	logger     *slog.Logger
}

var _ Source = (*FeedSource)(nil)

// FeedOption configures a FeedSource.
type FeedOption func(*FeedSource)

// WithDurationProbe reads lengths through lookup, at most maxProbes per call
// (0 means no limit).
func WithDurationProbe(lookup VideoLookup, maxProbes int) FeedOption {
	return func(s *FeedSource) {
		s.lookup = lookup
		s.maxProbes = maxProbes
	}
}

// NewFeedSource builds a feed source. Handles are resolved to channel ids by
// reading the canonical link of the channel page on the feed URL's host.
func NewFeedSource(feedURL string, client *http.Client, logger *slog.Logger, opts ...FeedOption) (*FeedSource, error) {
	parsed, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid feed url %q", feedURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	source := &FeedSource{
		feedURL:    parsed.String(),
		pageBase:   parsed.Scheme + "://" + parsed.Host,
		httpClient: client,
		parser:     gofeed.NewParser(),
		logger:     logging.NewComponentLogger(logger, "uploads-feed"),
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// Uploads yields every entry of the channel feed.
func (s *FeedSource) Uploads(ctx context.Context, channel Channel) iter.Seq2[UploadRecord, error] {
	return func(yield func(UploadRecord, error) bool) {
		channelID, err := s.resolveChannelID(ctx, channel.Handle)
		if err != nil {
			yield(UploadRecord{}, fmt.Errorf("%w: resolve %s: %w", ErrChannelUnavailable, channel.Handle, err))
			return
		}
		feed, err := s.fetchFeed(ctx, channelID)
		if err != nil {
			yield(UploadRecord{}, fmt.Errorf("%w: feed for %s: %w", ErrChannelUnavailable, channelID, err))
			return
		}
		s.logger.Debug("feed fetched",
			logging.String(logging.FieldChannel, channel.Label),
			logging.Int("items", len(feed.Items)),
		)
		for _, item := range feed.Items {
			record, ok := feedRecord(item, channel.Label)
			if !ok {
				continue
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// Durations probes each id through the configured VideoLookup. Without one,
// every id stays unknown.
func (s *FeedSource) Durations(ctx context.Context, ids []string) map[string]int {
	if s.lookup == nil {
		return map[string]int{}
	}
	return probeDurations(ctx, s.lookup, ids, s.maxProbes, s.logger)
}

func (s *FeedSource) fetchFeed(ctx context.Context, channelID string) (*gofeed.Feed, error) {
	endpoint, err := url.Parse(s.feedURL)
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("channel_id", channelID)
	endpoint.RawQuery = query.Encode()

	resp, err := s.get(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (s *FeedSource) resolveChannelID(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if strings.HasPrefix(handle, "UC") {
		return handle, nil
	}
	if handle == "" {
		return "", errors.New("empty handle")
	}
	resp, err := s.get(ctx, s.pageBase+"/@"+url.PathEscape(strings.TrimPrefix(handle, "@")))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse channel page: %w", err)
	}
	candidates := []string{
		doc.Find(`meta[itemprop="identifier"]`).AttrOr("content", ""),
		doc.Find(`meta[itemprop="channelId"]`).AttrOr("content", ""),
		channelIDFromURL(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
	}
	for _, id := range candidates {
		if strings.HasPrefix(id, "UC") {
			return id, nil
		}
	}
	return "", errors.New("channel id not found on channel page")
}

func (s *FeedSource) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := s.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("get %s (latency=%v): %w", target, latency, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s returned %d (latency=%v)", target, resp.StatusCode, latency)
	}
	return resp, nil
}

func channelIDFromURL(raw string) string {
	const marker = "/channel/"
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return ""
	}
	id := raw[idx+len(marker):]
	if cut := strings.IndexAny(id, "/?#"); cut >= 0 {
		id = id[:cut]
	}
	return id
}

func feedRecord(item *gofeed.Item, label string) (UploadRecord, bool) {
	if item == nil {
		return UploadRecord{}, false
	}
	id := ""
	if values := item.Extensions["yt"]["videoId"]; len(values) > 0 {
		id = strings.TrimSpace(values[0].Value)
	}
	if id == "" {
		id = strings.TrimPrefix(item.GUID, "yt:video:")
	}
	if id == "" || item.PublishedParsed == nil {
		return UploadRecord{}, false
	}
	return UploadRecord{
		ID:              id,
		Title:           item.Title,
		ChannelLabel:    label,
		PublishedAt:     item.PublishedParsed.UTC(),
		DurationSeconds: UnknownDuration,
	}, true
}
