package catalogue

import (
	"sort"
	"time"

	"povcat/internal/popularity"
)

type item struct {
	entry   Entry
	carried bool
	player  string
	team    string
	// counted is the identity the row contributes to popularity counts.
	counted string
}

// TitleResolver resolves a carried-over title again. ok is false when the
// title names no known player.
type TitleResolver func(title string) (player string, ok bool)

// InWindow reports whether published falls on or after the cutoff day.
// Both dates compare in UTC at day precision.
func InWindow(published, cutoff time.Time) bool {
	return published.UTC().Format(DateLayout) >= cutoff.UTC().Format(DateLayout)
}

// Merged is the deduplicated, window-bounded set of rows for one build.
type Merged struct {
	items []item

	CarriedOver int
	Added       int
	Duplicates  int
	Pruned      int
}

// Identities returns the identity every row resolves to, "" for rows without
// one, in merge order. Feed it to popularity.Aggregate. A carried-over row
// whose player was nulled by an earlier gate still counts for the player its
// title resolves to.
func (m *Merged) Identities() []string {
	out := make([]string, len(m.items))
	for i, it := range m.items {
		out[i] = it.counted
	}
	return out
}

// Len returns the number of merged rows.
func (m *Merged) Len() int { return len(m.items) }

// Builder assembles catalogues.
type Builder struct {
	mode   Mode
	policy popularity.Policy
}

// NewBuilder returns a builder for mode and suppression policy.
func NewBuilder(mode Mode, policy popularity.Policy) *Builder {
	return &Builder{mode: mode, policy: policy}
}

// Mode returns the build mode.
func (b *Builder) Mode() Mode { return b.mode }

// Merge combines existing entries with records. In incremental mode existing
// rows published on or after the cutoff day are carried over unchanged and win
// over any record with the same id; older or undated rows are pruned. A
// carried-over row without a player is counted through resolve when one is
// given. In rebuild mode existing is ignored. Records published before the
// cutoff day are pruned and repeated record ids keep their first occurrence.
func (b *Builder) Merge(existing []Entry, records []Record, cutoff time.Time, resolve TitleResolver) *Merged {
	merged := &Merged{}
	seen := make(map[string]struct{}, len(existing)+len(records))
	cutoffDay := cutoff.UTC().Format(DateLayout)

	if b.mode == ModeIncremental {
		for _, entry := range existing {
			if entry.ID == "" {
				merged.Pruned++
				continue
			}
			if _, dup := seen[entry.ID]; dup {
				merged.Duplicates++
				continue
			}
			if _, err := time.Parse(DateLayout, entry.Published); err != nil || entry.Published < cutoffDay {
				merged.Pruned++
				continue
			}
			seen[entry.ID] = struct{}{}
			player := deref(entry.Player)
			counted := player
			if counted == "" && resolve != nil {
				if resolved, ok := resolve(entry.Title); ok {
					counted = resolved
				}
			}
			merged.items = append(merged.items, item{
				entry:   entry,
				carried: true,
				player:  player,
				team:    deref(entry.Team),
				counted: counted,
			})
			merged.CarriedOver++
		}
	}

	for _, record := range records {
		if !InWindow(record.PublishedAt, cutoff) {
			merged.Pruned++
			continue
		}
		if _, dup := seen[record.ID]; dup {
			merged.Duplicates++
			continue
		}
		seen[record.ID] = struct{}{}
		merged.items = append(merged.items, item{
			entry: Entry{
				ID:        record.ID,
				Title:     record.Title,
				Channel:   record.Channel,
				Map:       optional(record.Map),
				Published: record.PublishedAt.UTC().Format(DateLayout),
			},
			player:  record.Player,
			team:    record.Team,
			counted: record.Player,
		})
		merged.Added++
	}
	return merged
}

// Build applies the suppression policy for keep and returns the catalogue
// sorted by published day, newest first. Rows with the same day keep merge
// order: carried-over rows in persisted order, then new rows in fetch order.
// Carried-over rows only ever lose their player or team here.
func (b *Builder) Build(merged *Merged, keep popularity.KeepSet) []Entry {
	out := make([]Entry, 0, len(merged.items))
	for _, it := range merged.items {
		entry := it.entry
		player, team := b.policy.Apply(it.player, it.team, keep)
		if it.carried {
			if player == "" {
				entry.Player = nil
			}
			if team == "" {
				entry.Team = nil
			}
		} else {
			entry.Player = optional(player)
			entry.Team = optional(team)
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Published > out[j].Published
	})
	return out
}
