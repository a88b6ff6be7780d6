package whitelist

import (
	"sort"
	"strings"

	"povcat/internal/ranking"
	"povcat/internal/textutil"
)

// Entry is one whitelisted player. Team is empty when unknown.
type Entry struct {
	Nickname string
	Team     string
}

// Whitelist maps folded nicknames to entries.
type Whitelist struct {
	entries map[string]Entry
}

// New returns an empty whitelist.
func New() *Whitelist {
	return &Whitelist{entries: make(map[string]Entry)}
}

// FromTeams builds a whitelist from ranked rosters. When a nickname appears on
// more than one roster the higher-ranked team wins.
func FromTeams(teams []ranking.Team) *Whitelist {
	w := New()
	for _, team := range teams {
		for _, player := range team.Players {
			w.Add(player, team.Name)
		}
	}
	return w
}

// Add inserts nickname unless it is already present. It reports whether the
// entry was added.
func (w *Whitelist) Add(nickname, team string) bool {
	nickname = strings.TrimSpace(nickname)
	key := textutil.Fold(nickname)
	if key == "" {
		return false
	}
	if _, exists := w.entries[key]; exists {
		return false
	}
	w.entries[key] = Entry{Nickname: nickname, Team: strings.TrimSpace(team)}
	return true
}

// Lookup finds the entry for token, ignoring case.
func (w *Whitelist) Lookup(token string) (Entry, bool) {
	if w == nil {
		return Entry{}, false
	}
	entry, ok := w.entries[textutil.Fold(token)]
	return entry, ok
}

// Len returns the number of entries.
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

// Entries returns all entries sorted by folded nickname.
func (w *Whitelist) Entries() []Entry {
	if w == nil {
		return nil
	}
	keys := make([]string, 0, len(w.entries))
	for key := range w.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, w.entries[key])
	}
	return out
}

// players renders the persisted nickname → team|null form.
func (w *Whitelist) players() map[string]*string {
	out := make(map[string]*string, w.Len())
	for _, entry := range w.Entries() {
		if entry.Team == "" {
			out[entry.Nickname] = nil
			continue
		}
		team := entry.Team
		out[entry.Nickname] = &team
	}
	return out
}

func fromPlayers(players map[string]*string) *Whitelist {
	names := make([]string, 0, len(players))
	for name := range players {
		names = append(names, name)
	}
	sort.Strings(names)
	w := New()
	for _, name := range names {
		team := ""
		if players[name] != nil {
			team = *players[name]
		}
		w.Add(name, team)
	}
	return w
}
