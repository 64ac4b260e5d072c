// Package datasource fetches schedules, rosters and Statcast event logs from public MLB APIs.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// ScheduleSource provides the daily schedule and active rosters
type ScheduleSource interface {
	// Schedule returns the games on the given date with probable starters hydrated
	Schedule(ctx context.Context, date time.Time) ([]models.Game, error)

	// ActiveRoster returns the active roster for a team
	ActiveRoster(ctx context.Context, teamID int64) ([]models.RosterEntry, error)
}

// EventSource provides pitch-level Statcast event logs for a date range
type EventSource interface {
	// BatterEvents returns every pitch seen by the batter between start and end inclusive
	BatterEvents(ctx context.Context, batterID int64, start, end time.Time) ([]models.StatcastEvent, error)

	// PitcherEvents returns every pitch thrown by the pitcher between start and end inclusive
	PitcherEvents(ctx context.Context, pitcherID int64, start, end time.Time) ([]models.StatcastEvent, error)
}

// Window returns the [now-lookbackDays, now] date range used for rolling windows
func Window(now time.Time, lookbackDays int) (time.Time, time.Time) {
	end := models.DateOnly(now)
	return end.AddDate(0, 0, -lookbackDays), end
}

// BatterWindow fetches a batter's events over the trailing lookback window
func BatterWindow(ctx context.Context, src EventSource, batterID int64, lookbackDays int) ([]models.StatcastEvent, error) {
	start, end := Window(time.Now(), lookbackDays)
	return src.BatterEvents(ctx, batterID, start, end)
}

// PitcherWindow fetches a pitcher's events over the trailing lookback window
func PitcherWindow(ctx context.Context, src EventSource, pitcherID int64, lookbackDays int) ([]models.StatcastEvent, error) {
	start, end := Window(time.Now(), lookbackDays)
	return src.PitcherEvents(ctx, pitcherID, start, end)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeUnknown           = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the data source error code from err, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}

// statusError maps a non-2xx HTTP status to a typed error
func statusError(source string, status int, body string) DataSourceError {
	switch {
	case status == 404:
		return NewDataSourceError(source, ErrCodeNotFound, "resource not found", ErrNotFound)
	case status == 429:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case status >= 500:
		return NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", status, body), ErrServerError)
	default:
		return NewDataSourceError(source, ErrCodeUnknown, fmt.Sprintf("unexpected status %d: %s", status, body), nil)
	}
}
