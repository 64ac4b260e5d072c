package repository

import (
	"context"
	"fmt"

	"github.com/jasemartin/mlb-top10-probability/internal/database"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// PostgresBvPRepository implements BvPRepository for PostgreSQL
type PostgresBvPRepository struct {
	db *database.DB
}

// NewPostgresBvPRepository creates a new matchup cache repository
func NewPostgresBvPRepository(db *database.DB) *PostgresBvPRepository {
	return &PostgresBvPRepository{db: db}
}

// LoadAll returns every cached matchup row
func (r *PostgresBvPRepository) LoadAll(ctx context.Context) ([]models.BvPRecord, error) {
	query := `
		SELECT batter_id, pitcher_id, pa, ab, avg, woba, hr, asof
		FROM bvp_cache
		ORDER BY batter_id, pitcher_id
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bvp cache: %w", err)
	}
	defer rows.Close()

	var records []models.BvPRecord
	for rows.Next() {
		var (
			rec       models.BvPRecord
			avg, woba *float64
		)
		if err := rows.Scan(&rec.BatterID, &rec.PitcherID, &rec.Stats.PA, &rec.Stats.AB, &avg, &woba, &rec.Stats.HR, &rec.AsOf); err != nil {
			return nil, fmt.Errorf("failed to scan bvp row: %w", err)
		}
		rec.Stats.AVG = derefFloat(avg)
		rec.Stats.WOBA = derefFloat(woba)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bvp rows: %w", err)
	}
	return records, nil
}

// Upsert overwrites the row for the record's pair, or inserts it
func (r *PostgresBvPRepository) Upsert(ctx context.Context, record models.BvPRecord) error {
	query := `
		INSERT INTO bvp_cache (batter_id, pitcher_id, pa, ab, avg, woba, hr, asof)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (batter_id, pitcher_id) DO UPDATE SET
			pa = EXCLUDED.pa,
			ab = EXCLUDED.ab,
			avg = EXCLUDED.avg,
			woba = EXCLUDED.woba,
			hr = EXCLUDED.hr,
			asof = EXCLUDED.asof
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.BatterID, record.PitcherID, record.Stats.PA, record.Stats.AB,
		floatPtr(record.Stats.AVG), floatPtr(record.Stats.WOBA), record.Stats.HR,
		models.DateOnly(record.AsOf),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bvp row: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller
func (r *PostgresBvPRepository) Close() error {
	return nil
}

func floatPtr(v float64) *float64 {
	if !models.IsFinite(v) {
		return nil
	}
	return &v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return nanValue
	}
	return *v
}

var _ BvPRepository = (*PostgresBvPRepository)(nil)
