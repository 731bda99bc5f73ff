package models

import (
	"testing"
	"time"
)

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"FC Example", "example"},
		{"Example City SC", "example city"},
		{"Liverpool FC", "liverpool"},
		{"liverpool", "liverpool"},
		{"Brighton & Hove Albion", "brighton and hove albion"},
		{"Sparta-Rotterdam", "sparta rotterdam"},
		{"  KSV  Cercle  Brugge ", "cercle brugge"},
		{"FK Bodø/Glimt", "bod glimt"},
	}

	for _, tt := range tests {
		result := NormalizeTeamName(tt.input)
		if result != tt.expected {
			t.Errorf("NormalizeTeamName(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestMatchKey_Dedup(t *testing.T) {
	d := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	k1 := NewMatchKey(d, "FC Example", "Example City")
	k2 := NewMatchKey(d, "Example", "Example City SC")

	if k1.Key() != k2.Key() {
		t.Errorf("keys should dedupe to the same fixture:\n  %s\n  %s", k1.Key(), k2.Key())
	}
}

func TestMatchKey_OrderInsensitive(t *testing.T) {
	d := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

	k1 := NewMatchKey(d, "Ajax", "Feyenoord")
	k2 := NewMatchKey(d, "Feyenoord", "Ajax")

	if k1.Key() != k2.Key() {
		t.Errorf("team order must not change the key:\n  %s\n  %s", k1.Key(), k2.Key())
	}
}

func TestMatchKey_DateDistinguishes(t *testing.T) {
	d1 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)

	k1 := NewMatchKey(d1, "Ajax", "Feyenoord")
	k2 := NewMatchKey(d2, "Ajax", "Feyenoord")

	if k1.Key() == k2.Key() {
		t.Error("same pairing on different dates must yield different keys")
	}
}

func TestTeamsMatch(t *testing.T) {
	tests := []struct {
		text string
		home string
		away string
		want bool
	}{
		{"Liverpool FC vs Everton, 10.01.2026", "Liverpool", "Everton FC", true},
		{"Liverpool FC vs Everton", "Liverpool", "Arsenal", false},
		{"FC Example 2:1 Example City SC", "Example", "Example City", true},
		{"", "Liverpool", "Everton", false},
		{"Liverpool vs Everton", "", "Everton", false},
	}

	for _, tt := range tests {
		if got := TeamsMatch(tt.text, tt.home, tt.away); got != tt.want {
			t.Errorf("TeamsMatch(%q, %q, %q) = %v, want %v", tt.text, tt.home, tt.away, got, tt.want)
		}
	}
}
