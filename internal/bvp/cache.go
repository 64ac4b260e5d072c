package bvp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/datasource"
	"github.com/jasemartin/mlb-top10-probability/internal/logger"
	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
	"github.com/jasemartin/mlb-top10-probability/internal/repository"
)

// Lookup outcomes recorded in metrics
const (
	LookupFresh     = "fresh"
	LookupRefreshed = "refreshed"
	LookupError     = "error"
)

// CacheConfig controls the matchup lookback and refresh policy
type CacheConfig struct {
	DaysBack    int
	RefreshDays int
}

// DefaultCacheConfig returns two seasons of lookback refreshed every three days
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{DaysBack: 730, RefreshDays: 3}
}

// Cache serves matchup summaries from a persisted table, refetching stale pairs.
// Rows are never evicted.
type Cache struct {
	repo   repository.BvPRepository
	events datasource.EventSource
	cfg    CacheConfig
	logger *logger.BoardLogger
	now    func() time.Time

	loadOnce sync.Once
	mu       sync.RWMutex
	records  map[models.PairKey]models.BvPRecord
}

// NewCache creates a matchup cache backed by repo and refreshed from events
func NewCache(repo repository.BvPRepository, events datasource.EventSource, cfg CacheConfig, log *logrus.Logger) *Cache {
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = DefaultCacheConfig().DaysBack
	}
	if cfg.RefreshDays <= 0 {
		cfg.RefreshDays = DefaultCacheConfig().RefreshDays
	}
	return &Cache{
		repo:    repo,
		events:  events,
		cfg:     cfg,
		logger:  logger.NewBoardLogger(log),
		now:     time.Now,
		records: make(map[models.PairKey]models.BvPRecord),
	}
}

// ForPair returns the batter's history against the pitcher.
// A row younger than RefreshDays is served as-is; otherwise the batter's
// events over the last DaysBack days are summarised, stored and returned.
func (c *Cache) ForPair(ctx context.Context, batterID, pitcherID int64) (models.BvPStats, error) {
	c.loadOnce.Do(func() { c.load(ctx) })

	now := c.now()
	key := models.PairKey{BatterID: batterID, PitcherID: pitcherID}

	c.mu.RLock()
	rec, ok := c.records[key]
	c.mu.RUnlock()
	if ok && rec.AgeDays(now) < c.cfg.RefreshDays {
		metrics.RecordBvPLookup(LookupFresh, c.Len())
		return rec.Stats, nil
	}

	end := models.DateOnly(now)
	start := end.AddDate(0, 0, -c.cfg.DaysBack)
	events, err := c.events.BatterEvents(ctx, batterID, start, end)
	if err != nil {
		metrics.RecordBvPLookup(LookupError, c.Len())
		return models.BvPStats{}, fmt.Errorf("failed to fetch matchup events for batter %d: %w", batterID, err)
	}

	stats := Summarize(events, pitcherID)
	rec = models.BvPRecord{
		BatterID:  batterID,
		PitcherID: pitcherID,
		Stats:     stats,
		AsOf:      end,
	}

	c.mu.Lock()
	c.records[key] = rec
	c.mu.Unlock()

	if err := c.repo.Upsert(ctx, rec); err != nil {
		metrics.RecordBvPPersistenceError("save")
		c.logger.WithError(err).WithFields(logrus.Fields{
			"batter_id":  batterID,
			"pitcher_id": pitcherID,
		}).Warn("Failed to persist matchup row")
	}

	c.logger.LogMatchupRefreshed(batterID, pitcherID, stats.PA, stats.AB, stats.HR)
	metrics.RecordBvPLookup(LookupRefreshed, c.Len())
	return stats, nil
}

// Len returns the number of cached matchup rows
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Cache) load(ctx context.Context) {
	records, err := c.repo.LoadAll(ctx)
	if err != nil {
		metrics.RecordBvPPersistenceError("load")
		c.logger.WithError(err).Warn("Failed to load matchup cache, starting empty")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		c.records[r.Key()] = r
	}
	c.logger.WithField("rows", len(records)).Debug("Loaded matchup cache")
}
