package resolver

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDateFuzzy parses the date formats the sources actually emit
// (30.01.2026, 30/01/2026, Jan 30, 2026, ...). Returns false when none match.
func ParseDateFuzzy(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}

// SeasonID maps a date to the European season it belongs to: July through
// June, so January 2026 is season 2025.
func SeasonID(d time.Time) int {
	if d.Month() >= time.July {
		return d.Year()
	}
	return d.Year() - 1
}

// InWindow reports whether d falls inside [start, end] by calendar date.
func InWindow(d, start, end time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(start.Truncate(24*time.Hour)) && !day.After(end.Truncate(24*time.Hour))
}
