package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jasemartin/mlb-top10-probability/internal/database"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// PostgresBoardRepository implements BoardRepository for PostgreSQL
type PostgresBoardRepository struct {
	db *database.DB
}

// NewPostgresBoardRepository creates a new board run repository
func NewPostgresBoardRepository(db *database.DB) *PostgresBoardRepository {
	return &PostgresBoardRepository{db: db}
}

// SaveRun stores a board run and its ranked entries in one transaction
func (r *PostgresBoardRepository) SaveRun(ctx context.Context, run *models.BoardRun) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO board_runs (id, board_date, generated_at, lookback_days, hitter_count,
				pitcher_count, skipped_hitters, skipped_pitchers)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, run.ID, run.Date, run.GeneratedAt, run.LookbackDays, run.HitterCount,
			run.PitcherCount, run.SkippedHitters, run.SkippedPitchers)
		if err != nil {
			return fmt.Errorf("failed to insert board run: %w", err)
		}

		entries := run.AllEntries()
		if len(entries) == 0 {
			return nil
		}

		columns := []string{"run_id", "market", "rank", "player_id", "player_name", "team_id", "probability"}
		rows := make([][]interface{}, len(entries))
		for i, e := range entries {
			rows[i] = []interface{}{run.ID, string(e.Market), e.Rank, e.PlayerID, e.PlayerName, e.TeamID, e.Probability}
		}

		copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"board_entries"}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy board entries: %w", err)
		}
		if int(copyCount) != len(entries) {
			return fmt.Errorf("expected to insert %d board entries, inserted %d", len(entries), copyCount)
		}
		return nil
	})
}

// GetRun loads a board run by id
func (r *PostgresBoardRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.BoardRun, error) {
	query := `
		SELECT id, board_date, generated_at, lookback_days, hitter_count, pitcher_count,
			skipped_hitters, skipped_pitchers
		FROM board_runs
		WHERE id = $1
	`
	return r.getRun(ctx, query, id)
}

// GetLatestRunForDate loads the most recently generated run for a board date
func (r *PostgresBoardRepository) GetLatestRunForDate(ctx context.Context, date time.Time) (*models.BoardRun, error) {
	query := `
		SELECT id, board_date, generated_at, lookback_days, hitter_count, pitcher_count,
			skipped_hitters, skipped_pitchers
		FROM board_runs
		WHERE board_date = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`
	return r.getRun(ctx, query, models.DateOnly(date))
}

func (r *PostgresBoardRepository) getRun(ctx context.Context, query string, arg interface{}) (*models.BoardRun, error) {
	run := &models.BoardRun{Markets: make(map[models.Market][]models.BoardEntry)}
	err := r.db.GetPool().QueryRow(ctx, query, arg).Scan(
		&run.ID, &run.Date, &run.GeneratedAt, &run.LookbackDays, &run.HitterCount,
		&run.PitcherCount, &run.SkippedHitters, &run.SkippedPitchers,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board run: %w", err)
	}

	rows, err := r.db.GetPool().Query(ctx, `
		SELECT market, rank, player_id, player_name, team_id, probability
		FROM board_entries
		WHERE run_id = $1
		ORDER BY market, rank
	`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query board entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      models.BoardEntry
			market string
		)
		if err := rows.Scan(&market, &e.Rank, &e.PlayerID, &e.PlayerName, &e.TeamID, &e.Probability); err != nil {
			return nil, fmt.Errorf("failed to scan board entry: %w", err)
		}
		e.Market = models.Market(market)
		run.Markets[e.Market] = append(run.Markets[e.Market], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating board entries: %w", err)
	}

	return run, nil
}

var _ BoardRepository = (*PostgresBoardRepository)(nil)
