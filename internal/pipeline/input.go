package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Player is one input row: a name plus an optional known club used as the
// entity-resolution fallback.
type Player struct {
	Name string
	Team string
}

// LoadPlayers reads the input table. Column selection is header-driven with
// synonyms ("name"/"player", "team"/"club"); a UTF-8 BOM on the header is
// tolerated; rows without a name are skipped. An empty result is the one
// configuration error that is fatal to the whole run.
func LoadPlayers(path string) ([]Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return readPlayers(f)
}

func readPlayers(r io.Reader) ([]Player, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read input header: %w", err)
	}

	nameIdx, teamIdx := -1, -1
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF")))
		switch col {
		case "name", "player":
			if nameIdx < 0 {
				nameIdx = i
			}
		case "team", "club":
			if teamIdx < 0 {
				teamIdx = i
			}
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("input has no name/player column (header: %v)", header)
	}

	var players []Player
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input row: %w", err)
		}
		if nameIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			continue
		}
		team := ""
		if teamIdx >= 0 && teamIdx < len(row) {
			team = strings.TrimSpace(row[teamIdx])
		}
		players = append(players, Player{Name: name, Team: team})
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("input table contains no players")
	}
	return players, nil
}
