// Package resultados locates and observes matches on resultados-futbol.com,
// which serves usable server-side markup.
package resultados

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

const Name = "resultados"

const baseURL = "https://www.resultados-futbol.com"

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

// LocateMatch queries the site search with both team names and the date and
// accepts the first /partido/ link mentioning both teams.
func (r *Resolver) LocateMatch(ctx context.Context, key models.MatchKey) (string, error) {
	cacheKey := key.Key()
	if cached, ok := r.cache.GetString(Name, "match_url", cacheKey); ok {
		return cached, nil
	}

	q := fmt.Sprintf("%s %s %s", key.Home, key.Away, key.Date.Format("2006-01-02"))
	searchURL := fmt.Sprintf("%s/search?q=%s", baseURL, url.QueryEscape(q))

	doc, err := r.fetchDoc(ctx, searchURL)
	if err != nil {
		return "", err
	}

	matchURL := ""
	doc.Find("a[href*='/partido/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
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

// Observe scans the match page for the player's lineup row and pulls minutes
// and cards out of it. Missing evidence stays absent.
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
		rowText := row.Text()

		if m := minutesRe.FindStringSubmatch(rowText); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil && v <= 120 {
				part.Minutes = models.Ptr(v)
			}
		}

		yellow, red := cardCounts(row)
		if yellow > 0 {
			part.Yellow = models.Ptr(yellow)
		}
		if red > 0 {
			part.Red = models.Ptr(red)
		}

		// Bench rows live in a section headed "suplentes" on this site.
		heading := strings.ToLower(row.Closest("div, table").Find("h2, h3, caption").First().Text())
		if strings.Contains(heading, "suplente") || strings.Contains(heading, "substitute") {
			part.Status = models.StatusBench
		}
		return false
	})

	return part
}

// cardCounts counts card icons in the player's row by image name keywords.
func cardCounts(row *goquery.Selection) (yellow, red int) {
	row.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")
		s := strings.ToLower(src + " " + alt)
		switch {
		case strings.Contains(s, "amarilla") || strings.Contains(s, "yellow"):
			yellow++
		case strings.Contains(s, "roja") || strings.Contains(s, "red"):
			red++
		}
	})
	return yellow, red
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
