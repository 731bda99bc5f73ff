package models

// Status describes a player's involvement in one match as reported by a
// single source (or by the merged record).
type Status string

const (
	StatusPlayed     Status = "played"
	StatusBench      Status = "bench"
	StatusNotInSquad Status = "not_in_squad"
	StatusUnknown    Status = "unknown"
)

// Participation is one source's observation of a goalkeeper's involvement in
// one match. Every field besides Status is optional: nil means the source did
// not report it, which is distinct from reporting zero.
type Participation struct {
	Status        Status   `json:"status"`
	Minutes       *int     `json:"minutes,omitempty"`
	GoalsConceded *int     `json:"goals_conceded,omitempty"`
	CleanSheet    *bool    `json:"clean_sheet,omitempty"`
	Assists       *int     `json:"assists,omitempty"`
	Yellow        *int     `json:"yellow,omitempty"`
	Red           *int     `json:"red,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
}

// NewParticipation returns an observation with no populated fields.
func NewParticipation() Participation {
	return Participation{Status: StatusUnknown}
}

// MatchRecord aggregates everything the pipeline learned about one fixture
// for one player: per-source raw observations, the merged result and the
// list of human-readable disagreements.
type MatchRecord struct {
	Key         MatchKey
	Competition string
	Score       string
	URLs        map[string]string
	BySource    map[string]Participation
	Final       Participation
	Conflicts   []string
}

// Ptr is a small helper for building optional fields in literals.
func Ptr[T any](v T) *T { return &v }
