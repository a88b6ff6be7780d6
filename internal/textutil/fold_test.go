package textutil

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"s1mple", "s1mple"},
		{"ZywOo", "zywoo"},
		{"  NiKo ", "niko"},
		{"ropz_", "ropz_"},
		{"Straße", "strasse"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("donk", "DONK") {
		t.Fatal("expected donk and DONK to fold equal")
	}
	if EqualFold("donk", "d0nk") {
		t.Fatal("expected donk and d0nk to differ")
	}
}
