package models

import (
	"regexp"
	"strings"
	"time"
)

// MatchKey is the immutable identity of a fixture: calendar date plus the two
// team display names as the discovering source recorded them.
type MatchKey struct {
	Date time.Time
	Home string
	Away string
}

func NewMatchKey(date time.Time, home, away string) MatchKey {
	return MatchKey{Date: date, Home: home, Away: away}
}

// Key builds a stable cross-source fixture identifier.
//
// Equality uses the exact date plus the normalized team-name pair. The pair is
// order-insensitive: sources disagree on which team they list first often
// enough that home/away order cannot be part of the identity.
func (k MatchKey) Key() string {
	a := NormalizeTeamName(k.Home)
	b := NormalizeTeamName(k.Away)
	if b < a {
		a, b = b, a
	}
	return k.Date.Format("2006-01-02") + "|" + a + "|" + b
}

var (
	suffixTokenRe = regexp.MustCompile(`\b(fc|sc|afc|sv|vv|ksv|fk|cf)\b`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeTeamName folds a club display name into a comparable token string:
// lower-cased, "&" expanded, common club suffix tokens stripped,
// non-alphanumerics collapsed to single spaces.
func NormalizeTeamName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", "and")
	s = suffixTokenRe.ReplaceAllString(s, " ")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// TeamsMatch reports whether both expected team names occur, after
// normalization, as substrings of the candidate display text. This is the
// shared acceptance heuristic for search results across all resolvers;
// a miss here must always be preferred over binding the wrong match.
func TeamsMatch(candidateText, home, away string) bool {
	text := NormalizeTeamName(candidateText)
	h := NormalizeTeamName(home)
	a := NormalizeTeamName(away)
	if h == "" || a == "" {
		return false
	}
	return strings.Contains(text, h) && strings.Contains(text, a)
}
