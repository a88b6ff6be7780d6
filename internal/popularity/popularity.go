package popularity

import (
	"fmt"
	"sort"
	"strings"

	"povcat/internal/textutil"
)

// Counter tallies records per nickname, ignoring case.
type Counter struct {
	counts map[string]int
	names  map[string]string
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int), names: make(map[string]string)}
}

// Add records one occurrence of nickname. Empty nicknames are ignored.
func (c *Counter) Add(nickname string) {
	key := textutil.Fold(nickname)
	if key == "" {
		return
	}
	if _, ok := c.names[key]; !ok {
		c.names[key] = strings.TrimSpace(nickname)
	}
	c.counts[key]++
}

// Count returns the occurrences of nickname.
func (c *Counter) Count(nickname string) int {
	return c.counts[textutil.Fold(nickname)]
}

// PlayerCount is one row of a counter snapshot.
type PlayerCount struct {
	Nickname string
	Count    int
}

// Snapshot returns all counts, highest first, ties by nickname.
func (c *Counter) Snapshot() []PlayerCount {
	out := make([]PlayerCount, 0, len(c.counts))
	for key, count := range c.counts {
		out = append(out, PlayerCount{Nickname: c.names[key], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return textutil.Fold(out[i].Nickname) < textutil.Fold(out[j].Nickname)
	})
	return out
}

// Aggregate counts the given resolved nicknames. Empty entries stand for
// records without an identity and are skipped.
func Aggregate(nicknames []string) *Counter {
	c := NewCounter()
	for _, nickname := range nicknames {
		c.Add(nickname)
	}
	return c
}

// KeepSet is the set of promoted nicknames.
type KeepSet struct {
	keys map[string]struct{}
}

// Contains reports whether nickname was promoted.
func (k KeepSet) Contains(nickname string) bool {
	_, ok := k.keys[textutil.Fold(nickname)]
	return ok
}

// Len returns the number of promoted nicknames.
func (k KeepSet) Len() int { return len(k.keys) }

// Gate promotes every nickname counted at least threshold times.
func Gate(counts *Counter, threshold int) KeepSet {
	keep := KeepSet{keys: make(map[string]struct{})}
	for key, count := range counts.counts {
		if count >= threshold {
			keep.keys[key] = struct{}{}
		}
	}
	return keep
}

// Policy decides what happens to identities that were not promoted.
type Policy string

const (
	// PolicyHard clears both player and team.
	PolicyHard Policy = "hard"
	// PolicySoft clears the player but keeps the team.
	PolicySoft Policy = "soft"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyHard:
		return PolicyHard, nil
	case PolicySoft:
		return PolicySoft, nil
	default:
		return "", fmt.Errorf("unknown suppression policy %q", value)
	}
}

// Apply returns the visible player and team for an identity given the keep set.
// An empty player means no identity.
func (p Policy) Apply(player, team string, keep KeepSet) (string, string) {
	if player == "" {
		if p == PolicySoft {
			return "", team
		}
		return "", ""
	}
	if keep.Contains(player) {
		return player, team
	}
	if p == PolicySoft {
		return "", team
	}
	return "", ""
}
