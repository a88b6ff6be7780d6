package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when the API answers successfully but the requested
// channel or playlist does not exist.
var ErrNotFound = errors.New("youtube: not found")

// maxBatch is the most ids the videos endpoint accepts per call.
const maxBatch = 50

// PlaylistItem is one entry of an uploads playlist page.
type PlaylistItem struct {
	VideoID     string
	Title       string
	PublishedAt time.Time
}

// Page is a single playlistItems response.
type Page struct {
	Items         []PlaylistItem
	NextPageToken string
}

// Client provides access to the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPageSize sets maxResults for playlist pages (1..50).
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 && size <= maxBatch {
			c.pageSize = size
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a YouTube client. The default HTTP client retries 429 and 5xx responses.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	client := &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: maxBatch,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: NewRetryTransport(http.DefaultTransport, DefaultRetryConfig),
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ResolveChannelID maps an @handle (or bare handle) to a channel id. Values that
// already look like channel ids are returned unchanged.
func (c *Client) ResolveChannelID(ctx context.Context, handleOrID string) (string, error) {
	value := strings.TrimSpace(handleOrID)
	if value == "" {
		return "", errors.New("channel handle must not be empty")
	}
	if strings.HasPrefix(value, "UC") {
		return value, nil
	}

	handle := "@" + strings.TrimPrefix(value, "@")
	var byHandle struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	params := url.Values{"part": {"id"}, "forHandle": {handle}}
	if err := c.get(ctx, "/channels", params, &byHandle); err != nil {
		return "", err
	}
	if len(byHandle.Items) > 0 && byHandle.Items[0].ID != "" {
		return byHandle.Items[0].ID, nil
	}

	var search struct {
		Items []struct {
			ID struct {
				ChannelID string `json:"channelId"`
			} `json:"id"`
		} `json:"items"`
	}
	params = url.Values{
		"part":       {"snippet"},
		"type":       {"channel"},
		"q":          {strings.TrimPrefix(handle, "@")},
		"maxResults": {"1"},
	}
	if err := c.get(ctx, "/search", params, &search); err != nil {
		return "", err
	}
	if len(search.Items) == 0 || search.Items[0].ID.ChannelID == "" {
		return "", fmt.Errorf("channel %s: %w", handle, ErrNotFound)
	}
	return search.Items[0].ID.ChannelID, nil
}

// UploadsPlaylistID returns the id of the channel's uploads playlist.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	var payload struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	params := url.Values{"part": {"contentDetails"}, "id": {channelID}}
	if err := c.get(ctx, "/channels", params, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 || payload.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("uploads playlist for %s: %w", channelID, ErrNotFound)
	}
	return payload.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// PlaylistPage fetches one page of a playlist. An empty pageToken starts at the top.
func (c *Client) PlaylistPage(ctx context.Context, playlistID, pageToken string) (*Page, error) {
	var payload struct {
		NextPageToken string `json:"nextPageToken"`
		Items         []struct {
			Snippet struct {
				Title       string `json:"title"`
				PublishedAt string `json:"publishedAt"`
				ResourceID  struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	params := url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(c.pageSize)},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	if err := c.get(ctx, "/playlistItems", params, &payload); err != nil {
		return nil, err
	}

	page := &Page{NextPageToken: payload.NextPageToken, Items: make([]PlaylistItem, 0, len(payload.Items))}
	for _, item := range payload.Items {
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil || item.Snippet.ResourceID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, PlaylistItem{
			VideoID:     item.Snippet.ResourceID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: published.UTC(),
		})
	}
	return page, nil
}

// Durations returns video lengths in seconds keyed by id. Ids the API does not
// return are absent from the map. Calls are batched 50 ids at a time.
func (c *Client) Durations(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	for start := 0; start < len(ids); start += maxBatch {
		end := min(start+maxBatch, len(ids))
		var payload struct {
			Items []struct {
				ID             string `json:"id"`
				ContentDetails struct {
					Duration string `json:"duration"`
				} `json:"contentDetails"`
			} `json:"items"`
		}
		params := url.Values{"part": {"contentDetails"}, "id": {strings.Join(ids[start:end], ",")}}
		if err := c.get(ctx, "/videos", params, &payload); err != nil {
			return out, err
		}
		for _, item := range payload.Items {
			seconds, err := ParseDuration(item.ContentDetails.Duration)
			if err != nil {
				continue
			}
			out[item.ID] = seconds
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse youtube url: %w", err)
	}
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("youtube %s (latency=%v): %w", path, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Latency: latency}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode youtube %s response: %w", path, err)
	}
	return nil
}

// StatusError reports a non-200 answer from the API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("youtube %s returned %d (latency=%v)", e.Endpoint, e.StatusCode, e.Latency)
}
