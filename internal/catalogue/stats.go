package catalogue

import "sort"

// Count is one labelled tally.
type Count struct {
	Label string
	Count int
}

// Summary tallies a catalogue for reporting.
type Summary struct {
	Total      int
	WithPlayer int
	WithMap    int
	Players    []Count
	Teams      []Count
	Channels   []Count
	Maps       []Count
	Newest     string
	Oldest     string
}

// Stats summarises entries. Each tally is sorted by count, then label.
func Stats(entries []Entry) Summary {
	players := map[string]int{}
	teams := map[string]int{}
	channels := map[string]int{}
	maps := map[string]int{}

	summary := Summary{Total: len(entries)}
	for _, entry := range entries {
		channels[entry.Channel]++
		if entry.Player != nil {
			summary.WithPlayer++
			players[*entry.Player]++
		}
		if entry.Team != nil {
			teams[*entry.Team]++
		}
		if entry.Map != nil {
			summary.WithMap++
			maps[*entry.Map]++
		}
		if summary.Newest == "" || entry.Published > summary.Newest {
			summary.Newest = entry.Published
		}
		if summary.Oldest == "" || entry.Published < summary.Oldest {
			summary.Oldest = entry.Published
		}
	}
	summary.Players = sortedCounts(players)
	summary.Teams = sortedCounts(teams)
	summary.Channels = sortedCounts(channels)
	summary.Maps = sortedCounts(maps)
	return summary
}

func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, count := range counts {
		out = append(out, Count{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
