package testsupport

import (
	"path/filepath"
	"testing"

	"povcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every network endpoint points at an unroutable placeholder so a test that
// forgets to inject a fake fails instead of reaching the internet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.YouTube.APIKey = "test"
	cfgVal.YouTube.BaseURL = "http://127.0.0.1:1/youtube/v3"
	cfgVal.YouTube.FeedURL = "http://127.0.0.1:1/feeds/videos.xml"
	cfgVal.Ranking.TeamsURL = "http://127.0.0.1:1/ranking"
	cfgVal.Whitelist.Path = filepath.Join(base, "state", "whitelist.json")
	cfgVal.Catalogue.Path = filepath.Join(base, "data", "videos.json")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithChannels replaces the channel list with label/handle pairs.
func WithChannels(pairs ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(pairs)%2 != 0 {
			b.t.Fatalf("WithChannels needs label/handle pairs, got %d values", len(pairs))
		}
		b.cfg.Channels = nil
		for i := 0; i < len(pairs); i += 2 {
			b.cfg.Channels = append(b.cfg.Channels, config.Channel{Label: pairs[i], Handle: pairs[i+1]})
		}
	}
}

// WithGate sets the promotion threshold and suppression policy.
func WithGate(threshold int, policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gate.Threshold = threshold
		b.cfg.Gate.Policy = policy
	}
}

// WithCatalogueMode sets incremental or rebuild mode.
func WithCatalogueMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalogue.Mode = mode
	}
}

// WithResolverMode sets whitelist or lookup resolution.
func WithResolverMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.Mode = mode
	}
}
