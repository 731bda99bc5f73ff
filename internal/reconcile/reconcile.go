// Package reconcile merges per-source participation observations for one
// match into one final observation, surfacing genuine source disagreement as
// first-class conflict entries instead of silently picking a winner.
package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// Merge combines the per-source observations into one Participation plus a
// list of human-readable conflicts. The rules are deterministic and
// source-count-independent:
//
//   - status: majority vote over non-unknown reports, ties broken by lexical
//     order of the status name; >1 distinct value is a conflict.
//   - minutes, cards, assists: maximum (these sources undercount, e.g. missed
//     stoppage time, far more often than they overcount).
//   - goals_conceded: statistical mode; >1 distinct value is a conflict with
//     the full frequency table.
//   - clean_sheet: derived from the resolved goals_conceded, else absent.
//   - rating: arithmetic mean, rounded to 2 decimals.
//
// A field is absent in the result only when every source left it absent.
func Merge(bySource map[string]models.Participation) (models.Participation, []string) {
	final := models.NewParticipation()
	var conflicts []string

	final.Status, conflicts = mergeStatus(bySource, conflicts)

	final.Minutes = maxField(bySource, func(p models.Participation) *int { return p.Minutes })
	final.Yellow = maxField(bySource, func(p models.Participation) *int { return p.Yellow })
	final.Red = maxField(bySource, func(p models.Participation) *int { return p.Red })
	final.Assists = maxField(bySource, func(p models.Participation) *int { return p.Assists })

	if gc, conflict, ok := mergeGoalsConceded(bySource); ok {
		final.GoalsConceded = models.Ptr(gc)
		final.CleanSheet = models.Ptr(gc == 0)
		if conflict != "" {
			conflicts = append(conflicts, conflict)
		}
	}

	var ratings []float64
	for _, p := range bySource {
		if p.Rating != nil {
			ratings = append(ratings, *p.Rating)
		}
	}
	if len(ratings) > 0 {
		sum := 0.0
		for _, r := range ratings {
			sum += r
		}
		final.Rating = models.Ptr(math.Round(sum/float64(len(ratings))*100) / 100)
	}

	return final, conflicts
}

func mergeStatus(bySource map[string]models.Participation, conflicts []string) (models.Status, []string) {
	reported := map[string]models.Status{}
	counts := map[models.Status]int{}
	for src, p := range bySource {
		if p.Status != models.StatusUnknown && p.Status != "" {
			reported[src] = p.Status
			counts[p.Status]++
		}
	}
	if len(counts) == 0 {
		return models.StatusUnknown, conflicts
	}

	type entry struct {
		status models.Status
		count  int
	}
	ranked := make([]entry, 0, len(counts))
	for st, n := range counts {
		ranked = append(ranked, entry{st, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].status < ranked[j].status
	})

	if len(counts) > 1 {
		srcs := make([]string, 0, len(reported))
		for src := range reported {
			srcs = append(srcs, src)
		}
		sort.Strings(srcs)
		parts := make([]string, 0, len(srcs))
		for _, src := range srcs {
			parts = append(parts, fmt.Sprintf("%s=%s", src, reported[src]))
		}
		conflicts = append(conflicts, "status_conflict: "+strings.Join(parts, ", "))
	}

	return ranked[0].status, conflicts
}

func mergeGoalsConceded(bySource map[string]models.Participation) (value int, conflict string, ok bool) {
	counts := map[int]int{}
	for _, p := range bySource {
		if p.GoalsConceded != nil {
			counts[*p.GoalsConceded]++
		}
	}
	if len(counts) == 0 {
		return 0, "", false
	}

	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}

	if len(counts) > 1 {
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, fmt.Sprintf("%d=%d", v, counts[v]))
		}
		conflict = "goals_conceded_conflict: " + strings.Join(parts, ", ")
	}

	return best, conflict, true
}

func maxField(bySource map[string]models.Participation, get func(models.Participation) *int) *int {
	var max *int
	for _, p := range bySource {
		v := get(p)
		if v == nil {
			continue
		}
		if max == nil || *v > *max {
			max = models.Ptr(*v)
		}
	}
	return max
}

// InfoScore is a heuristic weight of how many fields a source's observation
// populates: status and rating count double, minutes and goals_conceded count
// double, clean_sheet and cards count single. It is documented as the
// tie-break criterion for a future "trust the richer source" policy; the
// default merge rules above never consult it.
func InfoScore(p models.Participation) int {
	score := 0
	if p.Status != models.StatusUnknown && p.Status != "" {
		score += 2
	}
	if p.Rating != nil {
		score += 2
	}
	if p.Minutes != nil {
		score += 2
	}
	if p.GoalsConceded != nil {
		score += 2
	}
	if p.CleanSheet != nil {
		score++
	}
	if p.Yellow != nil || p.Red != nil {
		score++
	}
	return score
}
