package whitelist_test

import (
	"testing"

	"povcat/internal/ranking"
	"povcat/internal/whitelist"
)

func TestFromTeamsFirstRankedTeamWins(t *testing.T) {
	w := whitelist.FromTeams([]ranking.Team{
		{Name: "Vitality", Players: []string{"ZywOo", "apEX"}},
		{Name: "Stand-in", Players: []string{"zywoo", "  ", "ropz"}},
	})
	if w.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", w.Len())
	}
	entry, ok := w.Lookup("ZYWOO")
	if !ok || entry.Nickname != "ZywOo" || entry.Team != "Vitality" {
		t.Fatalf("unexpected entry %+v ok=%v", entry, ok)
	}
}

func TestLookupIgnoresCase(t *testing.T) {
	w := whitelist.New()
	w.Add("m0NESY", "G2")
	for _, token := range []string{"m0nesy", "M0NESY", " m0NESY "} {
		if _, ok := w.Lookup(token); !ok {
			t.Fatalf("expected %q to resolve", token)
		}
	}
	if _, ok := w.Lookup("monesy"); ok {
		t.Fatal("expected different spelling to miss")
	}
}

func TestEntriesSorted(t *testing.T) {
	w := whitelist.New()
	w.Add("ropz", "FaZe")
	w.Add("apEX", "Vitality")
	w.Add("Donk", "")
	entries := w.Entries()
	got := []string{entries[0].Nickname, entries[1].Nickname, entries[2].Nickname}
	want := []string{"apEX", "Donk", "ropz"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries order = %v, want %v", got, want)
		}
	}
}

func TestNilWhitelistIsEmpty(t *testing.T) {
	var w *whitelist.Whitelist
	if w.Len() != 0 {
		t.Fatal("nil whitelist should be empty")
	}
	if _, ok := w.Lookup("anyone"); ok {
		t.Fatal("nil whitelist should not resolve")
	}
}
