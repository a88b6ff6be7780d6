package whitelist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"povcat/internal/logging"
	"povcat/internal/outcome"
	"povcat/internal/ranking"
)

// RankingSource provides the ranked rosters the whitelist is built from.
type RankingSource interface {
	TopTeams(ctx context.Context, n int) ([]ranking.Team, error)
}

// Fetcher produces the whitelist for a run.
type Fetcher struct {
	source   RankingSource
	store    Store
	ttl      time.Duration
	topTeams int
	logger   *slog.Logger
}

// NewFetcher wires a ranking source to a snapshot store. A ttl of zero always
// fetches live.
func NewFetcher(source RankingSource, store Store, ttl time.Duration, topTeams int, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source:   source,
		store:    store,
		ttl:      ttl,
		topTeams: topTeams,
		logger:   logging.NewComponentLogger(logger, "whitelist"),
	}
}

// Fetch returns the whitelist as of now. A snapshot younger than the TTL is
// used without contacting the ranking unless refresh is set. When the live
// fetch fails the last snapshot is returned as Degraded; with no snapshot an
// empty whitelist is returned as Degraded. Fetch never returns Fatal.
func (f *Fetcher) Fetch(ctx context.Context, now time.Time, refresh bool) outcome.Result[*Whitelist] {
	cached, haveCache := f.loadCache(ctx)

	if haveCache && !refresh && f.ttl > 0 && cached.Whitelist.Len() > 0 {
		if age := now.Sub(cached.FetchedAt); age >= 0 && age < f.ttl {
			f.logger.Info("using cached whitelist",
				logging.Int("players", cached.Whitelist.Len()),
				logging.Duration("age", age.Round(time.Second)),
			)
			return outcome.Ok(cached.Whitelist)
		}
	}

	teams, err := f.source.TopTeams(ctx, f.topTeams)
	if err == nil {
		live := FromTeams(teams)
		if live.Len() > 0 {
			f.persist(ctx, Snapshot{Whitelist: live, FetchedAt: now})
			f.logger.Info("whitelist fetched",
				logging.Int("teams", len(teams)),
				logging.Int("players", live.Len()),
			)
			return outcome.Ok(live)
		}
		err = fmt.Errorf("ranking returned %d teams without players", len(teams))
	}

	if haveCache && cached.Whitelist.Len() > 0 {
		reason := fmt.Sprintf("ranking unavailable; using snapshot from %s", cached.FetchedAt.Format(time.RFC3339))
		logging.WarnWithContext(f.logger, "whitelist degraded to cached snapshot", "whitelist_degraded",
			logging.Error(err),
			logging.Int("players", cached.Whitelist.Len()),
			logging.Time("fetched_at", cached.FetchedAt),
			logging.String(logging.FieldErrorHint, "check ranking.teams_url and network access"),
			logging.String(logging.FieldImpact, "rosters may be out of date"),
		)
		return outcome.Degraded(cached.Whitelist, reason, err)
	}

	logging.WarnWithContext(f.logger, "whitelist unavailable", "whitelist_empty",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check ranking.teams_url and network access"),
		logging.String(logging.FieldImpact, "every catalogue entry will have a null player and team"),
	)
	return outcome.Degraded(New(), "ranking unavailable and no cached snapshot", err)
}

func (f *Fetcher) loadCache(ctx context.Context) (Snapshot, bool) {
	if f.store == nil {
		return Snapshot{}, false
	}
	snapshot, ok, err := f.store.Load(ctx)
	if err != nil {
		logging.WarnWithContext(f.logger, "whitelist cache unreadable", "whitelist_cache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cached snapshot ignored"),
		)
		return Snapshot{}, false
	}
	return snapshot, ok
}

func (f *Fetcher) persist(ctx context.Context, snapshot Snapshot) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, snapshot); err != nil {
		logging.WarnWithContext(f.logger, "whitelist cache write failed", "whitelist_cache_save_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run fetches the ranking again"),
		)
	}
}
