package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

var (
	ratingRe  = regexp.MustCompile(`\b(\d{1,2}\.\d{1,2})\b`)
	minutesRe = regexp.MustCompile(`\b(\d{1,3})['’′]`)
)

// ParseTextParticipation extracts a best-effort observation from a rendered
// match page's visible text. The browser-driven sources have no stable
// markup, but their lineup text follows a common shape: section headings
// (starting lineup / substitutes), then one line per player with minutes and
// a rating nearby. Anything that does not parse stays absent.
func ParseTextParticipation(text, playerName string) models.Participation {
	part := models.NewParticipation()
	want := strings.ToLower(strings.TrimSpace(playerName))
	if want == "" || text == "" {
		return part
	}

	lines := strings.Split(text, "\n")
	section := models.StatusPlayed

	for i, line := range lines {
		low := strings.ToLower(line)

		switch {
		case strings.Contains(low, "substitute") || strings.Contains(low, "bench"):
			section = models.StatusBench
		case strings.Contains(low, "lineup") || strings.Contains(low, "line-up") || strings.Contains(low, "starting"):
			section = models.StatusPlayed
		}

		if !strings.Contains(low, want) {
			continue
		}
		part.Status = section

		// Minutes and rating sit on the player's line or just after it.
		for j := i; j < len(lines) && j <= i+3; j++ {
			if part.Minutes == nil {
				if m := minutesRe.FindStringSubmatch(lines[j]); m != nil {
					if v, err := strconv.Atoi(m[1]); err == nil && v <= 120 {
						part.Minutes = models.Ptr(v)
					}
				}
			}
			if part.Rating == nil {
				if m := ratingRe.FindStringSubmatch(lines[j]); m != nil {
					if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 10 {
						part.Rating = models.Ptr(v)
					}
				}
			}
		}
		break
	}

	return part
}
