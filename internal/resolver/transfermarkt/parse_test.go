package transfermarkt

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseProfileLink(t *testing.T) {
	html := `<table class="items"><tr>
		<td class="hauptlink"><a href="/jan-kowalski/profil/spieler/12345">Jan Kowalski</a></td>
	</tr></table>`

	got := parseProfileLink(doc(t, html), "https://www.transfermarkt.com")
	want := "https://www.transfermarkt.com/jan-kowalski/profil/spieler/12345"
	if got != want {
		t.Errorf("parseProfileLink = %q, want %q", got, want)
	}
}

func TestParseProfileLinkMissing(t *testing.T) {
	if got := parseProfileLink(doc(t, "<div>no results</div>"), "https://x"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestParseClubsForPeriod_MidWindowTransfer(t *testing.T) {
	// Current club plus a transfer dated inside the window: both clubs kept.
	html := `
	<a href="/fc-example/startseite/verein/11">FC Example</a>
	<table class="items">
		<tr><td>15.01.2026</td>
			<td><a href="/fc-example/startseite/verein/11">FC Example</a></td>
			<td><a href="/other-town/startseite/verein/22">Other Town</a></td>
		</tr>
		<tr><td>10.08.2024</td>
			<td><a href="/old-club/startseite/verein/33">Old Club</a></td>
		</tr>
	</table>`

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	clubs := parseClubsForPeriod(doc(t, html), start, end)
	if len(clubs) != 2 {
		t.Fatalf("clubs = %v, want 2 entries", clubs)
	}
	if clubs[0].ID != 11 || clubs[0].Name != "FC Example" {
		t.Errorf("clubs[0] = %+v", clubs[0])
	}
	if clubs[1].ID != 22 || clubs[1].Name != "Other Town" {
		t.Errorf("clubs[1] = %+v", clubs[1])
	}
}

func TestParseFixtures(t *testing.T) {
	html := `<table class="items">
	<tr>
		<td>10.01.2026</td><td>H</td>
		<td><a href="/wettbewerb/L1">Ekstraklasa</a></td>
		<td><a href="/opponent/startseite/verein/99">Example City</a></td>
		<td>2:1</td>
		<td><a href="/spielbericht/index/spielbericht/555">report</a></td>
	</tr>
	<tr>
		<td>20.01.2026</td><td>A</td>
		<td><a href="/wettbewerb/L1">Ekstraklasa</a></td>
		<td><a href="/another/startseite/verein/77">Another United</a></td>
		<td>0:0</td>
		<td><a href="/spielbericht/index/spielbericht/556">report</a></td>
	</tr>
	<tr>
		<td>10.02.2026</td><td>H</td>
		<td><a href="/late/startseite/verein/88">Too Late</a></td>
		<td><a href="/spielbericht/index/spielbericht/557">report</a></td>
	</tr>
	</table>`

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	fixtures := parseFixtures(doc(t, html), "FC Example", start, end, "https://www.transfermarkt.com")
	if len(fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2 (window filter)", len(fixtures))
	}

	f := fixtures[0]
	if f.Key.Home != "FC Example" || f.Key.Away != "Example City" {
		t.Errorf("home fixture teams = %q vs %q", f.Key.Home, f.Key.Away)
	}
	if f.Score != "2:1" || f.Competition != "Ekstraklasa" {
		t.Errorf("score/competition = %q, %q", f.Score, f.Competition)
	}
	if f.ReportURL != "https://www.transfermarkt.com/spielbericht/index/spielbericht/555" {
		t.Errorf("report URL = %q", f.ReportURL)
	}

	f = fixtures[1]
	if f.Key.Home != "Another United" || f.Key.Away != "FC Example" {
		t.Errorf("away fixture teams = %q vs %q", f.Key.Home, f.Key.Away)
	}
}

func TestParseParticipation(t *testing.T) {
	tests := []struct {
		name string
		html string
		want models.Status
	}{
		{
			"starting lineup",
			`<div class="box"><h2>Line-Ups</h2>
			 <a href="/jan-kowalski/profil/spieler/12345">Jan Kowalski</a></div>`,
			models.StatusPlayed,
		},
		{
			"bench",
			`<div class="box"><h2>Substitutes</h2>
			 <a href="/jan-kowalski/profil/spieler/12345">Jan Kowalski</a></div>`,
			models.StatusBench,
		},
		{
			"absent from report",
			`<div class="box"><h2>Line-Ups</h2>
			 <a href="/someone-else/profil/spieler/9">Someone Else</a></div>`,
			models.StatusUnknown,
		},
		{
			"malformed markup",
			`<<<not html at all`,
			models.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := parseParticipation(doc(t, tt.html), "Jan Kowalski")
			if part.Status != tt.want {
				t.Errorf("status = %q, want %q", part.Status, tt.want)
			}
			if part.Minutes != nil || part.Rating != nil {
				t.Error("unparsed fields must stay absent")
			}
		})
	}
}
