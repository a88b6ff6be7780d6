package popularity_test

import (
	"testing"

	"povcat/internal/popularity"
)

func TestAggregateIgnoresCaseAndEmpty(t *testing.T) {
	counts := popularity.Aggregate([]string{"ZywOo", "zywoo", "", "donk", "ZYWOO"})
	if counts.Count("zywoo") != 3 || counts.Count("DONK") != 1 || counts.Count("ropz") != 0 {
		t.Fatalf("unexpected counts %+v", counts.Snapshot())
	}
	snapshot := counts.Snapshot()
	if len(snapshot) != 2 || snapshot[0].Nickname != "ZywOo" || snapshot[0].Count != 3 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestGateThresholdIsInclusive(t *testing.T) {
	counts := popularity.Aggregate([]string{"a1", "a1", "b2", "c3", "c3", "c3"})
	keep := popularity.Gate(counts, 2)
	if !keep.Contains("A1") || !keep.Contains("c3") || keep.Contains("b2") {
		t.Fatalf("unexpected keep set, len=%d", keep.Len())
	}
	if keep.Len() != 2 {
		t.Fatalf("expected 2 promoted, got %d", keep.Len())
	}
}

func TestPolicyApply(t *testing.T) {
	keep := popularity.Gate(popularity.Aggregate([]string{"NickA", "NickA"}), 2)
	tests := []struct {
		name       string
		policy     popularity.Policy
		player     string
		team       string
		wantPlayer string
		wantTeam   string
	}{
		{"hard promoted", popularity.PolicyHard, "NickA", "TeamX", "NickA", "TeamX"},
		{"hard demoted", popularity.PolicyHard, "NickB", "TeamY", "", ""},
		{"soft promoted", popularity.PolicySoft, "NickA", "TeamX", "NickA", "TeamX"},
		{"soft demoted keeps team", popularity.PolicySoft, "NickB", "TeamY", "", "TeamY"},
		{"hard unresolved", popularity.PolicyHard, "", "TeamZ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, team := tt.policy.Apply(tt.player, tt.team, keep)
			if player != tt.wantPlayer || team != tt.wantTeam {
				t.Fatalf("Apply = (%q, %q), want (%q, %q)", player, team, tt.wantPlayer, tt.wantTeam)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := popularity.ParsePolicy(" Soft "); err != nil || p != popularity.PolicySoft {
		t.Fatalf("ParsePolicy(soft) = %q, %v", p, err)
	}
	if _, err := popularity.ParsePolicy("lenient"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
