package identification

import "povcat/internal/textutil"

// marketingWords are title words that look like nicknames but never are.
var marketingWords = []string{
	"highlights", "highlight", "ranked", "clutch", "clutches", "ace", "aces",
	"insane", "best", "moments", "full", "match", "game", "round", "rounds",
	"faceit", "premier", "major", "final", "finals", "playoffs", "grand",
	"semi", "quarter", "cs2", "csgo", "counter-strike", "pov", "demo",
	"the", "and", "with", "on", "vod", "stream", "new", "pro", "pros",
	"shorts", "part", "episode", "official",
}

// Stopwords is the set of tokens a resolver never accepts: map names, generic
// marketing words, and any configured extras. Membership ignores case.
type Stopwords struct {
	set map[string]struct{}
}

// NewStopwords builds the default set extended with extra.
func NewStopwords(extra ...string) Stopwords {
	s := Stopwords{set: make(map[string]struct{}, len(KnownMaps)+len(marketingWords)+len(extra))}
	for _, group := range [][]string{KnownMaps, marketingWords, extra} {
		for _, word := range group {
			if key := textutil.Fold(word); key != "" {
				s.set[key] = struct{}{}
			}
		}
	}
	return s
}

// Contains reports whether token is a stopword.
func (s Stopwords) Contains(token string) bool {
	_, ok := s.set[textutil.Fold(token)]
	return ok
}
