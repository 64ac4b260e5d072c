package models

import (
	"math"
	"time"
)

// PairKey identifies a batter-vs-pitcher matchup
type PairKey struct {
	BatterID  int64
	PitcherID int64
}

// BvPStats summarises a batter's history against a single pitcher.
// AVG and WOBA are NaN when there is no sample to compute them from.
type BvPStats struct {
	PA   int     `json:"pa"`
	AB   int     `json:"ab"`
	AVG  float64 `json:"avg"`
	WOBA float64 `json:"woba"`
	HR   int     `json:"hr"`
}

// EmptyBvPStats returns the stats for a matchup with no history
func EmptyBvPStats() BvPStats {
	return BvPStats{AVG: math.NaN(), WOBA: math.NaN()}
}

// BvPRecord is a cached matchup summary row
type BvPRecord struct {
	BatterID  int64     `db:"batter_id" json:"batter_id"`
	PitcherID int64     `db:"pitcher_id" json:"pitcher_id"`
	Stats     BvPStats  `db:"-" json:"stats"`
	AsOf      time.Time `db:"asof" json:"asof"`
}

// Key returns the record's matchup key
func (r BvPRecord) Key() PairKey {
	return PairKey{BatterID: r.BatterID, PitcherID: r.PitcherID}
}

// AgeDays returns the number of calendar days between AsOf and now
func (r BvPRecord) AgeDays(now time.Time) int {
	return CalendarDaysBetween(r.AsOf, now)
}

// CalendarDaysBetween counts whole calendar days from a to b, ignoring clock time
func CalendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
