// Package bvp summarises, caches and blends batter-vs-pitcher history.
package bvp

import "github.com/jasemartin/mlb-top10-probability/internal/models"

// Summarize reduces a batter's pitch-level log to their history against one pitcher.
// PA is the number of pitch rows thrown by the pitcher and AB is PA less walks,
// hit-by-pitches and sacrifice flies, floored at zero. AVG divides hits by that AB.
func Summarize(events []models.StatcastEvent, pitcherID int64) models.BvPStats {
	stats := models.EmptyBvPStats()

	var (
		reduced   int
		hits      int
		wobaSum   float64
		wobaCount int
	)
	for _, e := range events {
		if e.Pitcher != pitcherID {
			continue
		}
		stats.PA++
		if models.IsFinite(e.EstimatedWOBA) {
			wobaSum += e.EstimatedWOBA
			wobaCount++
		}
		if e.ReducesAtBats() {
			reduced++
		}
		if e.IsHit() {
			hits++
		}
		if e.Event == models.EventHomeRun {
			stats.HR++
		}
	}

	stats.AB = max(0, stats.PA-reduced)
	if stats.AB > 0 {
		stats.AVG = float64(hits) / float64(stats.AB)
	}
	if wobaCount > 0 {
		stats.WOBA = wobaSum / float64(wobaCount)
	}
	return stats
}
