package pipeline

import (
	"strings"
	"testing"
)

func TestReadPlayersHeaderSynonyms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Player
	}{
		{
			name:  "name and team",
			input: "name,team\nJan Keeper,FC Example\n",
			want:  []Player{{Name: "Jan Keeper", Team: "FC Example"}},
		},
		{
			name:  "player and club synonyms",
			input: "player,club\nJan Keeper,FC Example\n",
			want:  []Player{{Name: "Jan Keeper", Team: "FC Example"}},
		},
		{
			name:  "bom on header",
			input: "\uFEFFname,team\nJan Keeper,FC Example\n",
			want:  []Player{{Name: "Jan Keeper", Team: "FC Example"}},
		},
		{
			name:  "team column optional",
			input: "name\nJan Keeper\n",
			want:  []Player{{Name: "Jan Keeper"}},
		},
		{
			name:  "extra columns ignored",
			input: "id,name,position,team\n7,Jan Keeper,GK,FC Example\n",
			want:  []Player{{Name: "Jan Keeper", Team: "FC Example"}},
		},
		{
			name:  "blank names skipped",
			input: "name,team\n,FC Example\nJan Keeper,FC Example\n",
			want:  []Player{{Name: "Jan Keeper", Team: "FC Example"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPlayers(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("readPlayers: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("players = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("player[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadPlayersErrors(t *testing.T) {
	if _, err := readPlayers(strings.NewReader("team\nFC Example\n")); err == nil {
		t.Error("missing name column must fail")
	}
	if _, err := readPlayers(strings.NewReader("name,team\n")); err == nil {
		t.Error("empty table must fail")
	}
	if _, err := readPlayers(strings.NewReader("name,team\n,\n,\n")); err == nil {
		t.Error("only blank rows must fail")
	}
}
