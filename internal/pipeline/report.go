package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// Row is one (player, fixture) pair of the output report.
type Row struct {
	Player string
	Record models.MatchRecord
}

// SourceColumns fixes the per-source URL column order of the report.
var SourceColumns = []string{"transfermarkt", "sofascore", "fotmob", "playmaker", "resultados"}

var reportHeader = []string{
	"player", "date", "home", "away", "competition", "score",
	"status", "minutes", "goals_conceded", "clean_sheet", "yellow", "red", "rating_mean",
	"url_transfermarkt", "url_sofascore", "url_fotmob", "url_playmaker", "url_resultados",
	"conflicts",
}

// SortRows orders the report deterministically: player, then date, then the
// fixture key for same-day fixtures.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Player != rows[j].Player {
			return rows[i].Player < rows[j].Player
		}
		if !rows[i].Record.Key.Date.Equal(rows[j].Record.Key.Date) {
			return rows[i].Record.Key.Date.Before(rows[j].Record.Key.Date)
		}
		return rows[i].Record.Key.Key() < rows[j].Record.Key.Key()
	})
}

// WriteCSV writes the report atomically (temp file + rename) so the periodic
// snapshot flushes never leave a half-written report behind.
func WriteCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(reportHeader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(csvFields(row)); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flush report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

func csvFields(row Row) []string {
	rec := row.Record
	final := rec.Final

	fields := []string{
		row.Player,
		rec.Key.Date.Format("2006-01-02"),
		rec.Key.Home,
		rec.Key.Away,
		rec.Competition,
		rec.Score,
		string(final.Status),
		intField(final.Minutes),
		intField(final.GoalsConceded),
		boolField(final.CleanSheet),
		intField(final.Yellow),
		intField(final.Red),
		ratingField(final.Rating),
	}
	for _, src := range SourceColumns {
		fields = append(fields, rec.URLs[src])
	}
	fields = append(fields, strings.Join(rec.Conflicts, "; "))
	return fields
}

// Absent fields render as empty cells: an empty string is the only honest
// spelling of "no source reported this".
func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolField(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func ratingField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
