package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"povcat/internal/catalogue"
	"povcat/internal/config"
	"povcat/internal/history"
	"povcat/internal/notifications"
	"povcat/internal/ranking"
	"povcat/internal/uploads"
	"povcat/internal/whitelist"
	"povcat/internal/youtube"
)

// Resources holds the collaborators Build opened. Close releases them.
type Resources struct {
	closers []func() error
}

func (r *Resources) add(closer func() error) {
	r.closers = append(r.closers, closer)
}

// Close releases every resource, returning the joined errors.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build wires production collaborators from cfg. Callers must Close the
// returned Resources, also when Build fails.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Pipeline, *Resources, error) {
	res := &Resources{}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, res, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, res, err
	}

	source, err := NewUploadSource(cfg, logger)
	if err != nil {
		return nil, res, err
	}
	rankingClient, err := NewRankingClient(cfg, logger)
	if err != nil {
		return nil, res, err
	}
	fetcher, err := NewWhitelistFetcher(cfg, rankingClient, res, logger)
	if err != nil {
		return nil, res, err
	}
	store, err := NewCatalogueStore(ctx, cfg)
	if err != nil {
		return nil, res, err
	}

	deps := Deps{
		Config:    cfg,
		Uploads:   source,
		Whitelist: fetcher,
		Catalogue: store,
		Notifier:  notifications.NewService(cfg),
		Logger:    logger,
	}
	if cfg.Resolver.Mode == config.ResolverLookup {
		deps.Confirmer = rankingClient
	}
	if cfg.History.Enabled {
		journal, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, res, fmt.Errorf("open history: %w", err)
		}
		res.add(journal.Close)
		deps.History = journal
	}

	p, err := New(deps, opts)
	if err != nil {
		return nil, res, err
	}
	return p, res, nil
}

// NewUploadSource returns the configured upload enumerator.
func NewUploadSource(cfg *config.Config, logger *slog.Logger) (uploads.Source, error) {
	switch cfg.YouTube.Source {
	case config.SourceFeed:
		client := &http.Client{
			Timeout:   cfg.YouTube.Timeout(),
			Transport: youtube.NewRetryTransport(http.DefaultTransport, youtube.DefaultRetryConfig),
		}
		var opts []uploads.FeedOption
		if cfg.YouTube.ProbeDurations {
			opts = append(opts, uploads.WithDurationProbe(uploads.NewVideoLookup(client), cfg.YouTube.MaxProbes))
		}
		return uploads.NewFeedSource(cfg.YouTube.FeedURL, client, logger, opts...)
	default:
		client, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL,
			youtube.WithPageSize(cfg.YouTube.PageSize),
			youtube.WithTimeout(cfg.YouTube.Timeout()),
		)
		if err != nil {
			return nil, fmt.Errorf("youtube client: %w", err)
		}
		return uploads.NewAPISource(client, logger), nil
	}
}

// NewRankingClient returns the roster/ranking client.
func NewRankingClient(cfg *config.Config, logger *slog.Logger) (*ranking.Client, error) {
	httpClient := &http.Client{
		Timeout:   cfg.Ranking.Timeout(),
		Transport: youtube.NewRetryTransport(http.DefaultTransport, youtube.DefaultRetryConfig),
	}
	client, err := ranking.New(cfg.Ranking.TeamsURL, ranking.Format(cfg.Ranking.Format), cfg.Ranking.Timeout(),
		ranking.WithHTTPClient(httpClient),
		ranking.WithSearchURL(cfg.Ranking.SearchURL),
		ranking.WithUserAgent(cfg.Ranking.UserAgent),
		ranking.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("ranking client: %w", err)
	}
	return client, nil
}

// NewWhitelistStore returns the configured snapshot store. Resources opened
// for it are registered on res.
func NewWhitelistStore(cfg *config.Config, res *Resources) whitelist.Store {
	if cfg.Whitelist.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Whitelist.RedisAddr,
			Password: cfg.Whitelist.RedisPassword,
			DB:       cfg.Whitelist.RedisDB,
		})
		res.add(client.Close)
		return whitelist.NewRedisStore(client, cfg.Whitelist.RedisKey)
	}
	return whitelist.NewFileStore(cfg.Whitelist.Path)
}

// NewWhitelistFetcher wires source to the configured snapshot store.
func NewWhitelistFetcher(cfg *config.Config, source whitelist.RankingSource, res *Resources, logger *slog.Logger) (*whitelist.Fetcher, error) {
	if source == nil {
		return nil, errors.New("whitelist fetcher requires a ranking source")
	}
	store := NewWhitelistStore(cfg, res)
	return whitelist.NewFetcher(source, store, cfg.Whitelist.TTL(), cfg.Ranking.TopTeams, logger), nil
}

// NewCatalogueStore returns the configured catalogue backend.
func NewCatalogueStore(ctx context.Context, cfg *config.Config) (catalogue.Store, error) {
	if cfg.Catalogue.Backend == config.BackendS3 {
		store, err := catalogue.NewS3StoreFromEnv(ctx, cfg.Catalogue.S3Bucket, cfg.Catalogue.S3Key, cfg.Catalogue.S3Region)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return catalogue.NewFileStore(cfg.Catalogue.Path), nil
}
