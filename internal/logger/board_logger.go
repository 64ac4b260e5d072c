package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BoardLogger provides dedicated logging for board computations.
type BoardLogger struct {
	*logrus.Entry
}

// NewBoardLogger creates a new board logger.
func NewBoardLogger(baseLogger *logrus.Logger) *BoardLogger {
	return &BoardLogger{
		Entry: baseLogger.WithField("component", "board"),
	}
}

// LogCandidatesCollected logs the outcome of schedule and roster collection.
func (bl *BoardLogger) LogCandidatesCollected(date string, games, hitters, pitchers int) {
	bl.WithFields(logrus.Fields{
		"date":     date,
		"games":    games,
		"hitters":  hitters,
		"pitchers": pitchers,
	}).Info("Daily candidates collected")
}

// LogRowSkipped logs a board row dropped because its inputs could not be computed.
func (bl *BoardLogger) LogRowSkipped(board string, playerID int64, err error) {
	bl.WithFields(logrus.Fields{
		"board":     board,
		"player_id": playerID,
	}).WithError(err).Warn("Skipping board row")
}

// LogBoardCompleted logs a finished board run.
func (bl *BoardLogger) LogBoardCompleted(runID, date string, hitterRows, pitcherRows, skipped int, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"run_id":       runID,
		"date":         date,
		"hitter_rows":  hitterRows,
		"pitcher_rows": pitcherRows,
		"skipped_rows": skipped,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Daily board computed")
}

// LogMatchupRefreshed logs a BvP summary fetched from Statcast.
func (bl *BoardLogger) LogMatchupRefreshed(batterID, pitcherID int64, pa, ab, hr int) {
	bl.WithFields(logrus.Fields{
		"batter_id":  batterID,
		"pitcher_id": pitcherID,
		"pa":         pa,
		"ab":         ab,
		"hr":         hr,
	}).Debug("Matchup history refreshed")
}
