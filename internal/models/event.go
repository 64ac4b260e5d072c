package models

import "time"

// Statcast event names used by the pipeline
const (
	EventSingle      = "single"
	EventDouble      = "double"
	EventTriple      = "triple"
	EventHomeRun     = "home_run"
	EventWalk        = "walk"
	EventHitByPitch  = "hit_by_pitch"
	EventSacFly      = "sac_fly"
	EventStrikeout   = "strikeout"
	EventStrikeoutDP = "strikeout_double_play"
)

// LaunchSpeedAngleBarrel is the Statcast launch_speed_angle code for a barrel
const LaunchSpeedAngleBarrel = 6

// StatcastEvent is a single pitch-level row from a Statcast search.
// Only the pitch that ends a plate appearance carries a non-empty Event.
type StatcastEvent struct {
	GameDate         time.Time `json:"game_date"`
	GamePK           int64     `json:"game_pk"`
	Batter           int64     `json:"batter"`
	Pitcher          int64     `json:"pitcher"`
	Event            string    `json:"events"`
	Description      string    `json:"description"`
	Stand            string    `json:"stand"`
	PThrows          string    `json:"p_throws"`
	LaunchSpeedAngle int       `json:"launch_speed_angle"`
	EstimatedBA      float64   `json:"estimated_ba_using_speedangle"`
	EstimatedWOBA    float64   `json:"estimated_woba_using_speedangle"`
}

// EndsPlateAppearance reports whether the row closes out a plate appearance
func (e StatcastEvent) EndsPlateAppearance() bool {
	return e.Event != ""
}

// IsHit reports whether the plate appearance ended in a base hit
func (e StatcastEvent) IsHit() bool {
	switch e.Event {
	case EventSingle, EventDouble, EventTriple, EventHomeRun:
		return true
	}
	return false
}

// IsStrikeout reports whether the plate appearance ended in a strikeout
func (e StatcastEvent) IsStrikeout() bool {
	return e.Event == EventStrikeout || e.Event == EventStrikeoutDP
}

// ReducesAtBats reports whether the row is a walk, hit-by-pitch or sacrifice
// fly, the results subtracted from pitch-row counts to get at-bats
func (e StatcastEvent) ReducesAtBats() bool {
	switch e.Event {
	case EventWalk, EventHitByPitch, EventSacFly:
		return true
	}
	return false
}

// IsBattedBall reports whether the row carries a launch speed/angle classification
func (e StatcastEvent) IsBattedBall() bool {
	return e.LaunchSpeedAngle > 0
}
