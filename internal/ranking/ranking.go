package ranking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"povcat/internal/logging"
	"povcat/internal/textutil"
)

// Format selects how ranking documents are parsed.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ErrEmptyRanking is returned when a ranking document yields no usable team.
var ErrEmptyRanking = errors.New("ranking contained no usable teams")

// Team is one ranked team and its current roster.
type Team struct {
	Name    string
	Players []string
}

// Player is a confirmed professional with their current team.
type Player struct {
	Nickname string
	Team     string
}

// ParseStats reports how much of a ranking document was usable.
type ParseStats struct {
	Teams   int
	Skipped int
}

// Client fetches rankings and player searches over HTTP.
type Client struct {
	teamsURL   string
	searchURL  string
	format     Format
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
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

// WithSearchURL sets the player search endpoint. A "{query}" placeholder is
// replaced by the escaped nickname; otherwise a term parameter is appended.
func WithSearchURL(searchURL string) Option {
	return func(c *Client) { c.searchURL = strings.TrimSpace(searchURL) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger attaches a logger for skipped-team diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(logger, "ranking") }
}

// New creates a ranking client.
func New(teamsURL string, format Format, timeout time.Duration, opts ...Option) (*Client, error) {
	teamsURL = strings.TrimSpace(teamsURL)
	if teamsURL == "" {
		return nil, errors.New("ranking teams url required")
	}
	switch format {
	case FormatJSON, FormatHTML:
	default:
		return nil, fmt.Errorf("unsupported ranking format %q", format)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		teamsURL:   teamsURL,
		format:     format,
		userAgent:  "povcat",
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// TopTeams returns up to n ranked teams in ranking order. n <= 0 means all.
func (c *Client) TopTeams(ctx context.Context, n int) ([]Team, error) {
	body, err := c.fetch(ctx, c.teamsURL)
	if err != nil {
		return nil, err
	}

	var (
		teams []Team
		stats ParseStats
	)
	switch c.format {
	case FormatHTML:
		teams, stats, err = ParseHTML(strings.NewReader(string(body)))
	default:
		teams, stats, err = ParseJSON(body)
	}
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		logging.WarnWithContext(c.logger, "ranking teams skipped", "ranking_partial",
			logging.Int("usable", stats.Teams),
			logging.Int("skipped", stats.Skipped),
			logging.String(logging.FieldErrorHint, "ranking payload shape may have changed"),
			logging.String(logging.FieldImpact, "players of skipped teams are not whitelisted"),
		)
	}
	if len(teams) == 0 {
		return nil, ErrEmptyRanking
	}
	if n > 0 && len(teams) > n {
		teams = teams[:n]
	}
	return teams, nil
}

// SearchPlayer looks up a single nickname. It reports false when the search
// has no professional with that exact nickname (case-insensitive) on a team.
func (c *Client) SearchPlayer(ctx context.Context, nickname string) (Player, bool, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return Player{}, false, errors.New("nickname must not be empty")
	}
	if c.searchURL == "" {
		return Player{}, false, errors.New("ranking search url not configured")
	}

	target := c.searchURL
	if strings.Contains(target, "{query}") {
		target = strings.ReplaceAll(target, "{query}", url.QueryEscape(nickname))
	} else {
		parsed, err := url.Parse(target)
		if err != nil {
			return Player{}, false, fmt.Errorf("parse search url: %w", err)
		}
		query := parsed.Query()
		query.Set("term", nickname)
		parsed.RawQuery = query.Encode()
		target = parsed.String()
	}

	body, err := c.fetch(ctx, target)
	if err != nil {
		return Player{}, false, err
	}
	players, err := ParsePlayerSearch(body)
	if err != nil {
		return Player{}, false, err
	}
	for _, player := range players {
		if player.Team != "" && textutil.EqualFold(player.Nickname, nickname) {
			return player, true, nil
		}
	}
	return Player{}, false, nil
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("ranking request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking request returned %d (latency=%v)", resp.StatusCode, latency)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read ranking response: %w", err)
	}
	return body, nil
}
