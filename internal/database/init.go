package database

import (
	"context"
	"fmt"

	"github.com/jasemartin/mlb-top10-probability/internal/config"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS bvp_cache (
		batter_id  BIGINT NOT NULL,
		pitcher_id BIGINT NOT NULL,
		pa         INTEGER NOT NULL DEFAULT 0,
		ab         INTEGER NOT NULL DEFAULT 0,
		avg        DOUBLE PRECISION,
		woba       DOUBLE PRECISION,
		hr         INTEGER NOT NULL DEFAULT 0,
		asof       DATE NOT NULL,
		PRIMARY KEY (batter_id, pitcher_id)
	)`,
	`CREATE TABLE IF NOT EXISTS board_runs (
		id               UUID PRIMARY KEY,
		board_date       DATE NOT NULL,
		generated_at     TIMESTAMPTZ NOT NULL,
		lookback_days    INTEGER NOT NULL,
		hitter_count     INTEGER NOT NULL,
		pitcher_count    INTEGER NOT NULL,
		skipped_hitters  INTEGER NOT NULL,
		skipped_pitchers INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_board_runs_date ON board_runs (board_date, generated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS board_entries (
		run_id      UUID NOT NULL REFERENCES board_runs (id) ON DELETE CASCADE,
		market      TEXT NOT NULL,
		rank        INTEGER NOT NULL,
		player_id   BIGINT NOT NULL,
		player_name TEXT NOT NULL,
		team_id     BIGINT NOT NULL,
		probability DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, market, rank)
	)`,
}

// Initialize creates a database connection pool and ensures the board schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the cache and board tables when they do not exist
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
