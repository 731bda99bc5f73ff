// Package transfermarkt implements the primary source: player profile and
// club lookup, club fixture lists and match-report participation. Its markup
// is server-rendered, so plain HTTP plus goquery is enough.
package transfermarkt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
)

const Name = "transfermarkt"

func init() {
	resolver.Register(Name, func(deps resolver.Deps) resolver.Source {
		return New(deps)
	})
}

// Resolver implements both resolver.Source and resolver.ClubDirectory.
type Resolver struct {
	http  resolver.Fetcher
	cache *cache.Cache
	base  string
}

var (
	_ resolver.Source        = (*Resolver)(nil)
	_ resolver.ClubDirectory = (*Resolver)(nil)
)

func New(deps resolver.Deps) *Resolver {
	domain := "transfermarkt.com"
	if deps.Config != nil && deps.Config.Sources.Transfermarkt.Domain != "" {
		domain = deps.Config.Sources.Transfermarkt.Domain
	}
	return &Resolver{
		http:  deps.HTTP,
		cache: deps.Cache,
		base:  "https://www." + domain,
	}
}

func (r *Resolver) Name() string { return Name }

// SearchPlayerProfile finds the player's profile URL via the quick-search
// endpoint. Cached under the lower-cased player name.
func (r *Resolver) SearchPlayerProfile(ctx context.Context, playerName string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(playerName))
	if cached, ok := r.cache.GetString(Name, "player_profile", key); ok {
		return cached, nil
	}

	searchURL := fmt.Sprintf("%s/schnellsuche/ergebnis/schnellsuche?query=%s", r.base, url.QueryEscape(playerName))
	doc, err := r.fetchDoc(ctx, searchURL)
	if err != nil {
		return "", err
	}

	profile := parseProfileLink(doc, r.base)
	if profile == "" {
		return "", resolver.ErrNotFound
	}

	r.cache.Set(profile, Name, "player_profile", key)
	return profile, nil
}

// PlayerClubs resolves the clubs the player belonged to during the window:
// the profile's current club, plus any transfer-history entry whose date
// falls inside [start, end]. A mid-window transfer therefore yields both the
// old and the new club.
func (r *Resolver) PlayerClubs(ctx context.Context, playerName string, start, end time.Time) ([]resolver.Club, error) {
	profile, err := r.SearchPlayerProfile(ctx, playerName)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s|%s|%s", profile, start.Format("2006-01-02"), end.Format("2006-01-02"))
	var cached []resolver.Club
	if r.cache.GetJSON(&cached, Name, "clubs_for_period", cacheKey) && len(cached) > 0 {
		return cached, nil
	}

	doc, err := r.fetchDoc(ctx, profile)
	if err != nil {
		return nil, err
	}

	clubs := parseClubsForPeriod(doc, start, end)
	if len(clubs) == 0 {
		return nil, resolver.ErrNotFound
	}

	r.cache.Set(clubs, Name, "clubs_for_period", cacheKey)
	return clubs, nil
}

// SearchClub binds a club display name to the first club the quick search
// returns. Fallback path for players whose profile lookup failed.
func (r *Resolver) SearchClub(ctx context.Context, name string) (resolver.Club, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	var cached resolver.Club
	if r.cache.GetJSON(&cached, Name, "club_search", key) && cached.ID != 0 {
		return cached, nil
	}

	searchURL := fmt.Sprintf("%s/schnellsuche/ergebnis/schnellsuche?query=%s", r.base, url.QueryEscape(name))
	doc, err := r.fetchDoc(ctx, searchURL)
	if err != nil {
		return resolver.Club{}, err
	}

	club, ok := parseFirstClub(doc)
	if !ok {
		return resolver.Club{}, resolver.ErrNotFound
	}

	r.cache.Set(club, Name, "club_search", key)
	return club, nil
}

// ClubFixtures lists the club's fixtures inside the window from its season
// schedule page. Each discovered fixture's report URL is also written to the
// match_url namespace so LocateMatch becomes a pure cache lookup.
func (r *Resolver) ClubFixtures(ctx context.Context, club resolver.Club, start, end time.Time) ([]resolver.Fixture, error) {
	season := resolver.SeasonID(start)
	cacheKey := fmt.Sprintf("%d|%d|%s|%s", club.ID, season, start.Format("2006-01-02"), end.Format("2006-01-02"))

	var entries []fixtureEntry
	if r.cache.GetJSON(&entries, Name, "fixtures", cacheKey) {
		return fixturesFromEntries(entries), nil
	}

	// The schedule endpoint varies per country mirror; this path works on
	// the major ones.
	scheduleURL := fmt.Sprintf("%s/-/spielplan/verein/%d/saison_id/%d", r.base, club.ID, season)
	doc, err := r.fetchDoc(ctx, scheduleURL)
	if err != nil {
		return nil, err
	}

	fixtures := parseFixtures(doc, club.Name, start, end, r.base)

	entries = make([]fixtureEntry, 0, len(fixtures))
	for _, f := range fixtures {
		entries = append(entries, fixtureEntry{
			Date:        f.Key.Date.Format("2006-01-02"),
			Home:        f.Key.Home,
			Away:        f.Key.Away,
			ReportURL:   f.ReportURL,
			Competition: f.Competition,
			Score:       f.Score,
		})
		r.cache.Set(f.ReportURL, Name, "match_url", f.Key.Key())
	}
	r.cache.Set(entries, Name, "fixtures", cacheKey)
	return fixtures, nil
}

// LocateMatch returns the report URL recorded during fixture discovery.
// Transfermarkt has no usable match search, so a fixture that never came
// through ClubFixtures is simply not found here.
func (r *Resolver) LocateMatch(ctx context.Context, key models.MatchKey) (string, error) {
	if cached, ok := r.cache.GetString(Name, "match_url", key.Key()); ok {
		return cached, nil
	}
	return "", resolver.ErrNotFound
}

// Observe parses the match report's lineup for the player. Transfermarkt
// lineups identify players by profile links; a hit in a substitutes box
// means bench, elsewhere means played. A missing name stays unknown so the
// richer sources can settle it.
func (r *Resolver) Observe(ctx context.Context, matchURL, playerName string) (models.Participation, error) {
	doc, err := r.fetchDoc(ctx, matchURL)
	if err != nil {
		return models.NewParticipation(), err
	}
	return parseParticipation(doc, playerName), nil
}

func (r *Resolver) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := r.http.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

type fixtureEntry struct {
	Date        string `json:"date"`
	Home        string `json:"home"`
	Away        string `json:"away"`
	ReportURL   string `json:"report_url"`
	Competition string `json:"competition,omitempty"`
	Score       string `json:"score,omitempty"`
}

func fixturesFromEntries(entries []fixtureEntry) []resolver.Fixture {
	out := make([]resolver.Fixture, 0, len(entries))
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			slog.Warn("Skipping cached fixture with bad date", "date", e.Date)
			continue
		}
		out = append(out, resolver.Fixture{
			Key:         models.NewMatchKey(d, e.Home, e.Away),
			ReportURL:   e.ReportURL,
			Competition: e.Competition,
			Score:       e.Score,
		})
	}
	return out
}
