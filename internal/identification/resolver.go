package identification

import (
	"context"

	"povcat/internal/whitelist"
)

// ResolvedIdentity is the canonical player a title resolved to.
type ResolvedIdentity struct {
	Nickname string
	Team     string
}

// Resolver maps ordered candidates to at most one identity.
type Resolver interface {
	Resolve(ctx context.Context, candidates []string) (ResolvedIdentity, bool)
}

// Resolve returns the first candidate that is not a stopword and is on the
// whitelist. The identity uses the whitelist's nickname casing and team.
func Resolve(candidates []string, wl *whitelist.Whitelist, stopwords Stopwords) (ResolvedIdentity, bool) {
	for _, candidate := range candidates {
		if stopwords.Contains(candidate) {
			continue
		}
		if entry, ok := wl.Lookup(candidate); ok {
			return ResolvedIdentity{Nickname: entry.Nickname, Team: entry.Team}, true
		}
	}
	return ResolvedIdentity{}, false
}

// WhitelistResolver resolves purely against an in-memory whitelist.
type WhitelistResolver struct {
	whitelist *whitelist.Whitelist
	stopwords Stopwords
}

var _ Resolver = (*WhitelistResolver)(nil)

// NewWhitelistResolver returns a resolver over wl.
func NewWhitelistResolver(wl *whitelist.Whitelist, stopwords Stopwords) *WhitelistResolver {
	return &WhitelistResolver{whitelist: wl, stopwords: stopwords}
}

func (r *WhitelistResolver) Resolve(_ context.Context, candidates []string) (ResolvedIdentity, bool) {
	return Resolve(candidates, r.whitelist, r.stopwords)
}
