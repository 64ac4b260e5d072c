package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// BvPRepository defines the interface for batter-vs-pitcher cache storage
type BvPRepository interface {
	// LoadAll returns every cached matchup row
	LoadAll(ctx context.Context) ([]models.BvPRecord, error)

	// Upsert overwrites the row for the record's pair, or appends it
	Upsert(ctx context.Context, record models.BvPRecord) error

	// Close releases any resources held by the store
	Close() error
}

// BoardRepository defines the interface for persisted board runs
type BoardRepository interface {
	SaveRun(ctx context.Context, run *models.BoardRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.BoardRun, error)
	GetLatestRunForDate(ctx context.Context, date time.Time) (*models.BoardRun, error)
}
