package identification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"povcat/internal/logging"
	"povcat/internal/ranking"
	"povcat/internal/textutil"
	"povcat/internal/whitelist"
)

// Confirmer answers whether a nickname belongs to a professional on a team.
type Confirmer interface {
	SearchPlayer(ctx context.Context, nickname string) (ranking.Player, bool, error)
}

type confirmation struct {
	identity ResolvedIdentity
	found    bool
}

// RunCache memoises confirmations for one run. Negative answers and failed
// calls are cached too, so a token is looked up at most once per run.
type RunCache struct {
	mu      sync.Mutex
	entries map[string]confirmation
	calls   int
	hits    int
}

// NewRunCache returns an empty cache. Create one per run and drop it afterwards.
func NewRunCache() *RunCache {
	return &RunCache{entries: make(map[string]confirmation)}
}

func (c *RunCache) get(token string) (confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[textutil.Fold(token)]
	if ok {
		c.hits++
	}
	return entry, ok
}

func (c *RunCache) put(token string, entry confirmation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[textutil.Fold(token)] = entry
	c.calls++
}

// Stats returns how many live lookups ran and how many were answered from cache.
func (c *RunCache) Stats() (calls, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls, c.hits
}

// LookupResolver accepts whitelisted candidates directly and confirms the
// rest with a live player search.
type LookupResolver struct {
	whitelist *whitelist.Whitelist
	stopwords Stopwords
	confirmer Confirmer
	cache     *RunCache
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Resolver = (*LookupResolver)(nil)

// NewLookupResolver wires a confirmer behind the whitelist. A nil cache gets a
// fresh one; timeout bounds each confirmation call.
func NewLookupResolver(wl *whitelist.Whitelist, stopwords Stopwords, confirmer Confirmer, cache *RunCache, timeout time.Duration, logger *slog.Logger) *LookupResolver {
	if cache == nil {
		cache = NewRunCache()
	}
	return &LookupResolver{
		whitelist: wl,
		stopwords: stopwords,
		confirmer: confirmer,
		cache:     cache,
		timeout:   timeout,
		logger:    logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve walks candidates left to right. Each is accepted when it is on the
// whitelist or the confirmer knows it; the first accepted candidate wins.
func (r *LookupResolver) Resolve(ctx context.Context, candidates []string) (ResolvedIdentity, bool) {
	for _, candidate := range candidates {
		if r.stopwords.Contains(candidate) {
			continue
		}
		if entry, ok := r.whitelist.Lookup(candidate); ok {
			return ResolvedIdentity{Nickname: entry.Nickname, Team: entry.Team}, true
		}
		if result := r.confirm(ctx, candidate); result.found {
			return result.identity, true
		}
	}
	return ResolvedIdentity{}, false
}

// Cache exposes the run cache for reporting.
func (r *LookupResolver) Cache() *RunCache { return r.cache }

func (r *LookupResolver) confirm(ctx context.Context, token string) confirmation {
	if cached, ok := r.cache.get(token); ok {
		return cached
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	player, found, err := r.confirmer.SearchPlayer(callCtx, token)
	var result confirmation
	switch {
	case err != nil:
		r.logger.Debug("player lookup failed",
			logging.String("token", token),
			logging.Error(err),
		)
	case found && player.Team != "":
		result = confirmation{identity: ResolvedIdentity{Nickname: player.Nickname, Team: player.Team}, found: true}
	}
	r.cache.put(token, result)
	return result
}
