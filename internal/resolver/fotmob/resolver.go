// Package fotmob locates and observes matches on FotMob via the shared
// browser session; its pages are rendered client-side.
package fotmob

import (
	"context"
	"fmt"
	"net/url"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
)

const Name = "fotmob"

func init() {
	resolver.Register(Name, func(deps resolver.Deps) resolver.Source {
		return New(deps)
	})
}

type Resolver struct {
	browser resolver.Browser
	cache   *cache.Cache
}

var _ resolver.Source = (*Resolver)(nil)

func New(deps resolver.Deps) *Resolver {
	return &Resolver{browser: deps.Browser, cache: deps.Cache}
}

func (r *Resolver) Name() string { return Name }

func (r *Resolver) LocateMatch(ctx context.Context, key models.MatchKey) (string, error) {
	cacheKey := key.Key()
	if cached, ok := r.cache.GetString(Name, "match_url", cacheKey); ok {
		return cached, nil
	}

	query := key.Home + " " + key.Away
	searchURL := fmt.Sprintf("https://www.fotmob.com/search?query=%s", url.QueryEscape(query))

	links, err := r.browser.Links(ctx, searchURL)
	if err != nil {
		return "", err
	}

	matchURL := resolver.PickMatchLink(links, "/matches/", key)
	if matchURL == "" {
		return "", resolver.ErrNotFound
	}

	r.cache.Set(matchURL, Name, "match_url", cacheKey)
	return matchURL, nil
}

func (r *Resolver) Observe(ctx context.Context, matchURL, playerName string) (models.Participation, error) {
	text, err := r.browser.Text(ctx, matchURL)
	if err != nil {
		return models.NewParticipation(), err
	}
	return resolver.ParseTextParticipation(text, playerName), nil
}
