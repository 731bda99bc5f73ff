package resolver

import (
	"strings"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/browser"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// PickMatchLink selects the first anchor whose href contains hrefFragment and
// whose visible text mentions both of the fixture's teams. False positives
// are strongly disfavored: no candidate means no match, never a guess.
func PickMatchLink(links []browser.Link, hrefFragment string, key models.MatchKey) string {
	for _, l := range links {
		if !strings.Contains(l.Href, hrefFragment) {
			continue
		}
		if models.TeamsMatch(l.Text, key.Home, key.Away) {
			return l.Href
		}
	}
	return ""
}
