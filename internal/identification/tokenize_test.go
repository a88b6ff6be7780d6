package identification

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		title      string
		candidates []string
		mapName    string
	}{
		{
			title:      "Player1 vs Player2 - Inferno - Game 1",
			candidates: []string{"Player1", "Player2", "Inferno", "Game"},
			mapName:    "inferno",
		},
		{
			title:      "NickA POV on Mirage",
			candidates: []string{"NickA", "Mirage"},
			mapName:    "mirage",
		},
		{
			title:      "donk/sh1ro POV | DEMO highlights ANUBIS",
			candidates: []string{"donk", "sh1ro", "ANUBIS"},
			mapName:    "anubis",
		},
		{
			title:      "ZywOo-vs-ropz --- m0NESY_ zywoo",
			candidates: []string{"ZywOo", "ropz", "m0NESY_"},
		},
		{
			title:      "ab supercalifragilisticexpialidocious xyz",
			candidates: []string{"xyz"},
		},
		{
			title:      "Povlsen plays demos on dust2",
			candidates: []string{"Povlsen", "plays", "demos", "dust2"},
			mapName:    "dust2",
		},
		{
			title: "!!! ?? ..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Tokenize(tt.title)
			if !reflect.DeepEqual(got.Candidates, tt.candidates) {
				t.Fatalf("candidates = %q, want %q", got.Candidates, tt.candidates)
			}
			if got.Map != tt.mapName {
				t.Fatalf("map = %q, want %q", got.Map, tt.mapName)
			}
		})
	}
}

func TestDetectMapUsesFixedOrder(t *testing.T) {
	if got := DetectMap("NUKE then MIRAGE"); got != "mirage" {
		t.Fatalf("expected mirage (earlier in KnownMaps), got %q", got)
	}
	if got := DetectMap("no map here"); got != "" {
		t.Fatalf("expected no map, got %q", got)
	}
}

func TestStopwords(t *testing.T) {
	s := NewStopwords("Blacklisted", " ")
	for _, word := range []string{"mirage", "DUST2", "Highlights", "clutch", "ranked", "blacklisted"} {
		if !s.Contains(word) {
			t.Fatalf("expected %q to be a stopword", word)
		}
	}
	if s.Contains("ZywOo") {
		t.Fatal("nickname must not be a stopword")
	}
}
