package datasource

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// WindowKey identifies a cached Statcast window
type WindowKey struct {
	PlayerType string
	PlayerID   int64
	Start      time.Time
	End        time.Time
}

// String returns string representation of the window key
func (k WindowKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", k.PlayerType, k.PlayerID, k.Start.Format("2006-01-02"), k.End.Format("2006-01-02"))
}

// CachedEventSource wraps an EventSource with an in-memory TTL cache
type CachedEventSource struct {
	source    EventSource
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  uint64
	missCount uint64
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	ItemCount int
	HitRate   float64
}

// NewCachedEventSource creates an event source whose windows are cached for ttl
func NewCachedEventSource(source EventSource, ttl time.Duration) *CachedEventSource {
	return &CachedEventSource{
		source: source,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
	}
}

// BatterEvents returns the batter's window, fetching it on a cache miss
func (c *CachedEventSource) BatterEvents(ctx context.Context, batterID int64, start, end time.Time) ([]models.StatcastEvent, error) {
	key := WindowKey{PlayerType: PlayerTypeBatter, PlayerID: batterID, Start: start, End: end}
	return c.getOrFetch(key, func() ([]models.StatcastEvent, error) {
		return c.source.BatterEvents(ctx, batterID, start, end)
	})
}

// PitcherEvents returns the pitcher's window, fetching it on a cache miss
func (c *CachedEventSource) PitcherEvents(ctx context.Context, pitcherID int64, start, end time.Time) ([]models.StatcastEvent, error) {
	key := WindowKey{PlayerType: PlayerTypePitcher, PlayerID: pitcherID, Start: start, End: end}
	return c.getOrFetch(key, func() ([]models.StatcastEvent, error) {
		return c.source.PitcherEvents(ctx, pitcherID, start, end)
	})
}

func (c *CachedEventSource) getOrFetch(key WindowKey, fetch func() ([]models.StatcastEvent, error)) ([]models.StatcastEvent, error) {
	if cached, found := c.cache.Get(key.String()); found {
		atomic.AddUint64(&c.hitCount, 1)
		c.updateMetrics(true)
		if events, ok := cached.([]models.StatcastEvent); ok {
			return events, nil
		}
	}

	atomic.AddUint64(&c.missCount, 1)
	c.updateMetrics(false)

	events, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key.String(), events, c.ttl)
	return events, nil
}

// Clear removes every cached window
func (c *CachedEventSource) Clear() {
	c.cache.Flush()
}

// Stats returns cache statistics
func (c *CachedEventSource) Stats() CacheStats {
	hits := atomic.LoadUint64(&c.hitCount)
	misses := atomic.LoadUint64(&c.missCount)

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		ItemCount: c.cache.ItemCount(),
		HitRate:   hitRate,
	}
}

func (c *CachedEventSource) updateMetrics(hit bool) {
	metrics.RecordStatcastCache(hit, c.Stats().HitRate)
}

var _ EventSource = (*CachedEventSource)(nil)
