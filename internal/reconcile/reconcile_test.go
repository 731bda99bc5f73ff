package reconcile

import (
	"strings"
	"testing"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

func TestAllUnknownStatusStaysUnknown(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"transfermarkt": models.NewParticipation(),
		"sofascore":     models.NewParticipation(),
		"fotmob":        models.NewParticipation(),
	})

	if final.Status != models.StatusUnknown {
		t.Errorf("status = %q, want unknown", final.Status)
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
}

func TestSingleValueWinsWithoutConflict(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"sofascore": {Status: models.StatusPlayed, Minutes: models.Ptr(90), GoalsConceded: models.Ptr(1), Rating: models.Ptr(6.9)},
		"fotmob":    models.NewParticipation(),
	})

	if final.Status != models.StatusPlayed {
		t.Errorf("status = %q", final.Status)
	}
	if final.Minutes == nil || *final.Minutes != 90 {
		t.Errorf("minutes = %v, want 90", final.Minutes)
	}
	if final.GoalsConceded == nil || *final.GoalsConceded != 1 {
		t.Errorf("goals_conceded = %v, want 1", final.GoalsConceded)
	}
	if final.CleanSheet == nil || *final.CleanSheet {
		t.Errorf("clean_sheet = %v, want false", final.CleanSheet)
	}
	if final.Rating == nil || *final.Rating != 6.9 {
		t.Errorf("rating = %v, want 6.9", final.Rating)
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
}

func TestMinutesMergeIsMonotone(t *testing.T) {
	base := map[string]models.Participation{
		"a": {Status: models.StatusPlayed, Minutes: models.Ptr(90)},
	}
	final, _ := Merge(base)
	if *final.Minutes != 90 {
		t.Fatalf("minutes = %d", *final.Minutes)
	}

	// Adding a lower report never changes the merged maximum.
	base["b"] = models.Participation{Status: models.StatusPlayed, Minutes: models.Ptr(85)}
	final, _ = Merge(base)
	if *final.Minutes != 90 {
		t.Errorf("minutes after lower report = %d, want 90", *final.Minutes)
	}
}

func TestGoalsConcededMode(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(3)},
		"b": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(3)},
		"c": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(4)},
	})

	if final.GoalsConceded == nil || *final.GoalsConceded != 3 {
		t.Errorf("goals_conceded = %v, want mode 3", final.GoalsConceded)
	}
	if len(conflicts) != 1 || !strings.Contains(conflicts[0], "goals_conceded_conflict") {
		t.Fatalf("conflicts = %v, want one goals_conceded conflict", conflicts)
	}
	if !strings.Contains(conflicts[0], "3=2") || !strings.Contains(conflicts[0], "4=1") {
		t.Errorf("conflict should carry the frequency table, got %q", conflicts[0])
	}
}

func TestCleanSheetDerivation(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(0)},
		"b": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(0)},
		"c": {Status: models.StatusPlayed, GoalsConceded: models.Ptr(0)},
	})

	if final.GoalsConceded == nil || *final.GoalsConceded != 0 {
		t.Errorf("goals_conceded = %v, want 0", final.GoalsConceded)
	}
	if final.CleanSheet == nil || !*final.CleanSheet {
		t.Errorf("clean_sheet = %v, want true", final.CleanSheet)
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
}

func TestCleanSheetAbsentWithoutGoalsConceded(t *testing.T) {
	final, _ := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed, Minutes: models.Ptr(90)},
	})
	if final.CleanSheet != nil {
		t.Errorf("clean_sheet = %v, want absent", final.CleanSheet)
	}
}

func TestRatingMean(t *testing.T) {
	final, _ := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed, Rating: models.Ptr(7.1)},
		"b": {Status: models.StatusPlayed, Rating: models.Ptr(6.9)},
		"c": {Status: models.StatusPlayed, Rating: models.Ptr(7.3)},
	})

	if final.Rating == nil || *final.Rating != 7.10 {
		t.Errorf("rating = %v, want 7.10", final.Rating)
	}
}

func TestStatusMajorityAndConflict(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed},
		"b": {Status: models.StatusPlayed},
		"c": {Status: models.StatusBench},
	})

	if final.Status != models.StatusPlayed {
		t.Errorf("status = %q, want played (majority)", final.Status)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", conflicts)
	}
	want := "status_conflict: a=played, b=played, c=bench"
	if conflicts[0] != want {
		t.Errorf("conflict = %q, want %q", conflicts[0], want)
	}
}

func TestStatusExactSplitBreaksLexically(t *testing.T) {
	final, conflicts := Merge(map[string]models.Participation{
		"a": {Status: models.StatusPlayed},
		"b": {Status: models.StatusBench},
	})

	// bench < not_in_squad < played: the rule is determinism, not truth.
	if final.Status != models.StatusBench {
		t.Errorf("status = %q, want bench on an exact split", final.Status)
	}
	if len(conflicts) != 1 {
		t.Errorf("an exact split is still a conflict, got %v", conflicts)
	}
}

func TestFieldAbsentOnlyWhenAllAbsent(t *testing.T) {
	final, _ := Merge(map[string]models.Participation{
		"a": models.NewParticipation(),
		"b": models.NewParticipation(),
	})

	if final.Minutes != nil || final.GoalsConceded != nil || final.CleanSheet != nil ||
		final.Rating != nil || final.Yellow != nil || final.Red != nil || final.Assists != nil {
		t.Errorf("all fields must stay absent, got %+v", final)
	}
}

func TestInfoScoreWeights(t *testing.T) {
	full := models.Participation{
		Status:        models.StatusPlayed,
		Minutes:       models.Ptr(90),
		GoalsConceded: models.Ptr(0),
		CleanSheet:    models.Ptr(true),
		Yellow:        models.Ptr(1),
		Rating:        models.Ptr(7.0),
	}
	if got := InfoScore(full); got != 10 {
		t.Errorf("InfoScore(full) = %d, want 10", got)
	}
	if got := InfoScore(models.NewParticipation()); got != 0 {
		t.Errorf("InfoScore(empty) = %d, want 0", got)
	}
}
