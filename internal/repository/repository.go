package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/database"
)

// nanValue stands in for a missing wOBA in every backend
var nanValue = math.NaN()

// Repositories holds all repository implementations
type Repositories struct {
	BvP   BvPRepository
	Board BoardRepository
}

// NewRepositories creates the matchup cache store for the configured backend
// and, when a database is available, the board run store
func NewRepositories(ctx context.Context, cfg *config.Config, db *database.DB) (*Repositories, error) {
	bvpRepo, err := NewBvPRepository(ctx, &cfg.BvP, db)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{BvP: bvpRepo}
	if db != nil {
		repos.Board = NewPostgresBoardRepository(db)
	}
	return repos, nil
}

// NewBvPRepository creates the matchup cache store for the configured backend
func NewBvPRepository(ctx context.Context, cfg *config.BvPConfig, db *database.DB) (BvPRepository, error) {
	switch cfg.Backend {
	case config.CacheBackendParquet, "":
		return NewParquetBvPRepository(cfg.Path), nil
	case config.CacheBackendSQLite:
		return OpenSQLiteBvPRepository(ctx, cfg.Path)
	case config.CacheBackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("database connection is required for the %s backend", cfg.Backend)
		}
		return NewPostgresBvPRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown bvp cache backend %q", cfg.Backend)
	}
}

// Close releases resources held by the repositories
func (r *Repositories) Close() error {
	if r == nil || r.BvP == nil {
		return nil
	}
	return r.BvP.Close()
}
