// Package app wires configuration into the data sources, caches and services
// shared by the board executables.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/bvp"
	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/database"
	"github.com/jasemartin/mlb-top10-probability/internal/datasource"
	"github.com/jasemartin/mlb-top10-probability/internal/repository"
	"github.com/jasemartin/mlb-top10-probability/internal/service"
)

// App holds the wired components of the board pipeline
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	DB       *database.DB
	Repos    *repository.Repositories
	StatsAPI *datasource.StatsAPIClient
	Events   *datasource.CachedEventSource
	Matchups *bvp.Cache
	Board    *service.BoardService

	StatsAPIHTTP *datasource.RateLimitedHTTPClient
	StatcastHTTP *datasource.RateLimitedHTTPClient
}

// Build creates every component from cfg. A database connection is opened
// only when the database is enabled or a component stores data in PostgreSQL.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if cfg.NeedsDatabase() {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		logger.WithField("host", cfg.Database.Host).Info("Database connection established")
	}

	repos, err := repository.NewRepositories(ctx, cfg, a.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	a.Repos = repos

	a.StatsAPIHTTP = datasource.NewRateLimitedHTTPClient(httpClientConfig(cfg.StatsAPI), logger)
	a.StatcastHTTP = datasource.NewRateLimitedHTTPClient(httpClientConfig(cfg.Statcast.HTTPSourceConfig), logger)

	a.StatsAPI = datasource.NewStatsAPIClient(a.StatsAPIHTTP, cfg.StatsAPI.BaseURL, logger)
	statcast := datasource.NewStatcastClient(a.StatcastHTTP, cfg.Statcast.BaseURL, logger)
	a.Events = datasource.NewCachedEventSource(statcast, cfg.Statcast.CacheTTL())

	a.Matchups = bvp.NewCache(repos.BvP, a.Events, bvp.CacheConfig{
		DaysBack:    cfg.BvP.DaysBack,
		RefreshDays: cfg.BvP.RefreshDays,
	}, logger)

	a.Board = service.NewBoardService(a.StatsAPI, a.Events, a.Matchups, repos.Board, logger)

	logger.WithFields(logrus.Fields{
		"bvp_backend": cfg.BvP.Backend,
		"persist":     cfg.Board.Persist,
	}).Debug("Board pipeline wired")

	return a, nil
}

// BoardOptions returns the configured board parameters
func (a *App) BoardOptions() service.BoardOptions {
	return service.BoardOptionsFromConfig(a.Config)
}

// Close releases the HTTP clients, repositories and database pool
func (a *App) Close() {
	for _, c := range []*datasource.RateLimitedHTTPClient{a.StatsAPIHTTP, a.StatcastHTTP} {
		if c != nil {
			_ = c.Close()
		}
	}
	if a.Repos != nil {
		if err := a.Repos.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close repositories")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func httpClientConfig(src config.HTTPSourceConfig) datasource.HTTPClientConfig {
	cfg := datasource.DefaultHTTPClientConfig()
	cfg.Timeout = src.Timeout()
	cfg.MaxRetries = src.MaxRetries
	cfg.RateLimit = src.RateLimit
	return cfg
}
