package models

import "time"

// Position types reported by the stats API roster endpoint
const (
	PositionTypePitcher     = "P"
	PositionTypePitcherLong = "Pitcher"
)

// Person is a player as reported by the stats API
type Person struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	BatSide   string `json:"bat_side,omitempty"`
	PitchHand string `json:"pitch_hand,omitempty"`
}

// TeamSide is one side (home or away) of a scheduled game
type TeamSide struct {
	TeamID          int64   `json:"team_id"`
	TeamName        string  `json:"team_name"`
	ProbablePitcher *Person `json:"probable_pitcher,omitempty"`
}

// Game is a scheduled game with its probable starters
type Game struct {
	GamePK   int64     `json:"game_pk"`
	GameDate time.Time `json:"game_date"`
	Venue    string    `json:"venue,omitempty"`
	Home     TeamSide  `json:"home"`
	Away     TeamSide  `json:"away"`
}

// RosterEntry is a single player on a team's active roster
type RosterEntry struct {
	Person       Person `json:"person"`
	PositionCode string `json:"position_code"`
	PositionType string `json:"position_type"`
}

// IsPitcher reports whether the roster entry is listed as a pitcher
func (r RosterEntry) IsPitcher() bool {
	return r.PositionType == PositionTypePitcher || r.PositionType == PositionTypePitcherLong
}

// HitterCandidate is a non-pitcher expected to face an opposing probable starter
type HitterCandidate struct {
	BatterID             int64  `json:"batter_id"`
	BatterName           string `json:"batter_name"`
	BatSide              string `json:"bat_side,omitempty"`
	TeamID               int64  `json:"team_id"`
	OpponentTeamID       int64  `json:"opponent_team_id"`
	OppProbablePitcherID int64  `json:"opp_prob_pitcher_id,omitempty"`
	OppPitcherHand       string `json:"opp_pitcher_hand,omitempty"`
}

// HasOpposingStarter reports whether a probable starter has been announced
func (h HitterCandidate) HasOpposingStarter() bool {
	return h.OppProbablePitcherID != 0
}

// PitcherCandidate is a probable starting pitcher
type PitcherCandidate struct {
	PitcherID      int64  `json:"pitcher_id"`
	PitcherName    string `json:"pitcher_name"`
	TeamID         int64  `json:"team_id"`
	OpponentTeamID int64  `json:"opponent_team_id"`
}
