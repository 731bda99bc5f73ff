// Package resolver defines the source-agnostic contract every external data
// source implements, plus the registry the pipeline assembles them from.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/browser"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/config"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/httpx"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// ErrNotFound reports that a source has no resource for the query. It is the
// normal negative outcome of a lookup, not a failure: returning it is always
// safer than binding the wrong match or profile.
var ErrNotFound = errors.New("resolver: not found")

// Source is one external data source. Implementations consult the cache
// before any network work and write back on success.
type Source interface {
	Name() string

	// LocateMatch finds this source's URL for the fixture's match page.
	LocateMatch(ctx context.Context, key models.MatchKey) (string, error)

	// Observe parses the match page into a participation observation for the
	// named player. Unparseable or absent fields stay absent; malformed
	// markup yields Status=unknown, never an error.
	Observe(ctx context.Context, matchURL, playerName string) (models.Participation, error)
}

// Club is a resolved club binding on the primary source.
type Club struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Fixture is one scheduled match discovered from a club's schedule, carrying
// the primary source's report URL.
type Fixture struct {
	Key         models.MatchKey
	ReportURL   string
	Competition string
	Score       string
}

// ClubDirectory is the entity-resolution capability: player name to clubs
// valid in a window, club to fixtures in a window.
type ClubDirectory interface {
	// PlayerClubs returns every club the player belonged to during the
	// window. A mid-window transfer yields more than one club; that must not
	// be collapsed.
	PlayerClubs(ctx context.Context, playerName string, start, end time.Time) ([]Club, error)

	// SearchClub binds a club display name to the first plausible club.
	// Used as the fallback when no club resolves from the player profile.
	SearchClub(ctx context.Context, name string) (Club, error)

	// ClubFixtures returns the club's fixtures whose date falls in the
	// window, each with a resolvable home/away pair.
	ClubFixtures(ctx context.Context, club Club, start, end time.Time) ([]Fixture, error)
}

// Browser is the rendered-page capability consumed by sources whose markup
// only exists after JavaScript runs.
type Browser interface {
	Links(ctx context.Context, pageURL string) ([]browser.Link, error)
	Text(ctx context.Context, pageURL string) (string, error)
}

// Fetcher is the retrying transport capability.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Deps carries the shared capabilities handed to every source factory.
type Deps struct {
	HTTP    Fetcher
	Cache   *cache.Cache
	Browser Browser
	Config  *config.Config
}

var _ Fetcher = (*httpx.Client)(nil)
var _ Browser = (*browser.Session)(nil)
