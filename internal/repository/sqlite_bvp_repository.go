package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const sqliteBvPSchema = `
CREATE TABLE IF NOT EXISTS bvp_cache (
	batter_id  INTEGER NOT NULL,
	pitcher_id INTEGER NOT NULL,
	pa         INTEGER NOT NULL DEFAULT 0,
	ab         INTEGER NOT NULL DEFAULT 0,
	avg        REAL,
	woba       REAL,
	hr         INTEGER NOT NULL DEFAULT 0,
	asof       TEXT NOT NULL,
	PRIMARY KEY (batter_id, pitcher_id)
)`

// SQLiteBvPRepository stores the matchup table in an embedded SQLite file
type SQLiteBvPRepository struct {
	db *sql.DB
}

// OpenSQLiteBvPRepository opens the SQLite file at path and ensures the schema exists
func OpenSQLiteBvPRepository(ctx context.Context, path string) (*SQLiteBvPRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteBvPSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bvp_cache table: %w", err)
	}
	return &SQLiteBvPRepository{db: db}, nil
}

// LoadAll returns every cached matchup row
func (r *SQLiteBvPRepository) LoadAll(ctx context.Context) ([]models.BvPRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT batter_id, pitcher_id, pa, ab, avg, woba, hr, asof FROM bvp_cache ORDER BY batter_id, pitcher_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bvp cache: %w", err)
	}
	defer rows.Close()

	var records []models.BvPRecord
	for rows.Next() {
		var (
			rec       models.BvPRecord
			avg, woba sql.NullFloat64
			asof      string
		)
		if err := rows.Scan(&rec.BatterID, &rec.PitcherID, &rec.Stats.PA, &rec.Stats.AB, &avg, &woba, &rec.Stats.HR, &asof); err != nil {
			return nil, fmt.Errorf("failed to scan bvp row: %w", err)
		}
		rec.Stats.AVG = nullFloat(avg)
		rec.Stats.WOBA = nullFloat(woba)
		if t, err := time.Parse("2006-01-02", asof); err == nil {
			rec.AsOf = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert overwrites the row for the record's pair, or inserts it
func (r *SQLiteBvPRepository) Upsert(ctx context.Context, record models.BvPRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bvp_cache (batter_id, pitcher_id, pa, ab, avg, woba, hr, asof)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (batter_id, pitcher_id) DO UPDATE SET
			pa = excluded.pa, ab = excluded.ab, avg = excluded.avg,
			woba = excluded.woba, hr = excluded.hr, asof = excluded.asof`,
		record.BatterID, record.PitcherID, record.Stats.PA, record.Stats.AB,
		toNullFloat(record.Stats.AVG), toNullFloat(record.Stats.WOBA), record.Stats.HR,
		models.DateOnly(record.AsOf).Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bvp row: %w", err)
	}
	return nil
}

// Close closes the SQLite handle
func (r *SQLiteBvPRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return nanValue
	}
	return v.Float64
}

func toNullFloat(v float64) sql.NullFloat64 {
	if !models.IsFinite(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

var _ BvPRepository = (*SQLiteBvPRepository)(nil)
