package transfermarkt

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
)

var (
	clubIDRe  = regexp.MustCompile(`/verein/(\d+)`)
	rowDateRe = regexp.MustCompile(`\d{2}[./]\d{2}[./]\d{4}|\b[A-Za-z]{3} \d{1,2}, \d{4}\b`)
	scoreRe   = regexp.MustCompile(`\b(\d+):(\d+)\b`)
)

func parseProfileLink(doc *goquery.Document, base string) string {
	a := doc.Find("table.items td.hauptlink a[href*='/profil/spieler/']").First()
	href, ok := a.Attr("href")
	if !ok {
		return ""
	}
	return absoluteURL(base, href)
}

// parseClubsForPeriod extracts the profile's current club plus every club
// linked from a transfer-history row whose date falls inside the window.
func parseClubsForPeriod(doc *goquery.Document, start, end time.Time) []resolver.Club {
	byID := map[int]string{}
	var order []int

	add := func(id int, name string) {
		if name == "" {
			return
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = name
	}

	cur := doc.Find("a[href*='/startseite/verein/']").First()
	if href, ok := cur.Attr("href"); ok {
		if id, ok := clubID(href); ok {
			add(id, strings.TrimSpace(cur.Text()))
		}
	}

	doc.Find("table.items tr").Each(func(_ int, row *goquery.Selection) {
		text := strings.Join(strings.Fields(row.Text()), " ")
		dm := rowDateRe.FindString(text)
		if dm == "" {
			return
		}
		d, ok := resolver.ParseDateFuzzy(dm)
		if !ok || !resolver.InWindow(d, start, end) {
			return
		}
		row.Find("a[href*='/startseite/verein/']").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if id, ok := clubID(href); ok {
				add(id, strings.TrimSpace(a.Text()))
			}
		})
	})

	clubs := make([]resolver.Club, 0, len(order))
	for _, id := range order {
		clubs = append(clubs, resolver.Club{Name: byID[id], ID: id})
	}
	return clubs
}

func parseFirstClub(doc *goquery.Document) (resolver.Club, bool) {
	a := doc.Find("a[href*='/startseite/verein/']").First()
	href, ok := a.Attr("href")
	if !ok {
		return resolver.Club{}, false
	}
	id, ok := clubID(href)
	if !ok {
		return resolver.Club{}, false
	}
	name := strings.TrimSpace(a.Text())
	if name == "" {
		return resolver.Club{}, false
	}
	return resolver.Club{Name: name, ID: id}, true
}

// parseFixtures walks the season schedule table. A row counts when it links
// a match report and carries a date inside the window. The club's own side
// comes from the H/A cell; the opponent is the other club link in the row.
func parseFixtures(doc *goquery.Document, clubName string, start, end time.Time, base string) []resolver.Fixture {
	var fixtures []resolver.Fixture

	doc.Find("table.items tr").Each(func(_ int, row *goquery.Selection) {
		report := row.Find("a[href*='/spielbericht/']").First()
		reportHref, ok := report.Attr("href")
		if !ok {
			return
		}

		rowText := strings.Join(strings.Fields(row.Text()), " ")

		var matchDate time.Time
		found := false
		row.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			t := strings.TrimSpace(td.Text())
			if m := rowDateRe.FindString(t); m != "" {
				if d, ok := resolver.ParseDateFuzzy(m); ok {
					matchDate, found = d, true
					return false
				}
			}
			return true
		})
		if !found {
			if m := rowDateRe.FindString(rowText); m != "" {
				matchDate, found = resolver.ParseDateFuzzy(m)
			}
		}
		if !found || !resolver.InWindow(matchDate, start, end) {
			return
		}

		opponent := ""
		row.Find("a[href*='/startseite/verein/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			name := strings.TrimSpace(a.Text())
			if name != "" && models.NormalizeTeamName(name) != models.NormalizeTeamName(clubName) {
				opponent = name
				return false
			}
			return true
		})
		if opponent == "" {
			return
		}

		isHome := true
		row.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			switch strings.TrimSpace(td.Text()) {
			case "H":
				isHome = true
				return false
			case "A":
				isHome = false
				return false
			}
			return true
		})

		home, away := clubName, opponent
		if !isHome {
			home, away = opponent, clubName
		}

		fixtures = append(fixtures, resolver.Fixture{
			Key:         models.NewMatchKey(matchDate, home, away),
			ReportURL:   absoluteURL(base, reportHref),
			Competition: strings.TrimSpace(row.Find("a[href*='/wettbewerb/']").First().Text()),
			Score:       scoreRe.FindString(rowText),
		})
	})

	return fixtures
}

// parseParticipation scans the match report's player links. Transfermarkt
// does not mark "not in squad" in any selector-stable way, so absence stays
// unknown and the other sources get to settle it.
func parseParticipation(doc *goquery.Document, playerName string) models.Participation {
	part := models.NewParticipation()
	want := strings.ToLower(strings.TrimSpace(playerName))

	doc.Find("a[href*='/profil/spieler/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.ToLower(strings.TrimSpace(a.Text())) != want {
			return true
		}
		part.Status = models.StatusPlayed
		// Substitute boxes carry a bench-style heading on every mirror.
		heading := strings.ToLower(a.Closest("div.box").Find("h2").First().Text())
		for _, marker := range []string{"substitute", "ersatzbank", "bench", "rezerw"} {
			if strings.Contains(heading, marker) {
				part.Status = models.StatusBench
				break
			}
		}
		return false
	})

	return part
}

func clubID(href string) (int, bool) {
	m := clubIDRe.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	return id, err == nil
}

func absoluteURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(u).String()
}
