// Package playmaker locates and observes matches on playmakerstats.com.
package playmaker

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
)

const Name = "playmaker"

const baseURL = "https://www.playmakerstats.com"

func init() {
	resolver.Register(Name, func(deps resolver.Deps) resolver.Source {
		return New(deps)
	})
}

type Resolver struct {
	http  resolver.Fetcher
	cache *cache.Cache
}

var _ resolver.Source = (*Resolver)(nil)

func New(deps resolver.Deps) *Resolver {
	return &Resolver{http: deps.HTTP, cache: deps.Cache}
}

func (r *Resolver) Name() string { return Name }

func (r *Resolver) LocateMatch(ctx context.Context, key models.MatchKey) (string, error) {
	cacheKey := key.Key()
	if cached, ok := r.cache.GetString(Name, "match_url", cacheKey); ok {
		return cached, nil
	}

	q := key.Home + " " + key.Away
	searchURL := fmt.Sprintf("%s/search?search_string=%s", baseURL, url.QueryEscape(q))

	doc, err := r.fetchDoc(ctx, searchURL)
	if err != nil {
		return "", err
	}

	matchURL := ""
	doc.Find("a[href*='/match/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if models.TeamsMatch(a.Text(), key.Home, key.Away) {
			if href, ok := a.Attr("href"); ok {
				matchURL = absoluteURL(href)
				return false
			}
		}
		return true
	})
	if matchURL == "" {
		return "", resolver.ErrNotFound
	}

	r.cache.Set(matchURL, Name, "match_url", cacheKey)
	return matchURL, nil
}

func (r *Resolver) Observe(ctx context.Context, matchURL, playerName string) (models.Participation, error) {
	doc, err := r.fetchDoc(ctx, matchURL)
	if err != nil {
		return models.NewParticipation(), err
	}
	return parseParticipation(doc, playerName), nil
}

var minutesRe = regexp.MustCompile(`\b(\d{1,3})['’′]`)

func parseParticipation(doc *goquery.Document, playerName string) models.Participation {
	part := models.NewParticipation()
	want := strings.ToLower(strings.TrimSpace(playerName))

	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.ToLower(strings.TrimSpace(a.Text())) != want {
			return true
		}
		part.Status = models.StatusPlayed

		row := a.Closest("tr, li")
		if m := minutesRe.FindStringSubmatch(row.Text()); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil && v <= 120 {
				part.Minutes = models.Ptr(v)
			}
		}

		heading := strings.ToLower(row.Closest("div, table").Find("h2, h3, caption").First().Text())
		if strings.Contains(heading, "substitute") || strings.Contains(heading, "suplente") || strings.Contains(heading, "bench") {
			part.Status = models.StatusBench
		}
		return false
	})

	return part
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

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + "/" + strings.TrimPrefix(href, "/")
}
