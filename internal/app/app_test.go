package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestBuildWithFileBackends(t *testing.T) {
	for _, backend := range []string{config.CacheBackendParquet, config.CacheBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.BvP.Backend = backend
			cfg.BvP.Path = filepath.Join(t.TempDir(), "bvp_cache."+backend)

			a, err := Build(context.Background(), cfg, logger.Discard())
			require.NoError(t, err)
			defer a.Close()

			assert.Nil(t, a.DB)
			assert.Nil(t, a.Repos.Board)
			assert.NotNil(t, a.Board)
			assert.NotNil(t, a.Matchups)
			assert.Equal(t, 0, a.Matchups.Len())
		})
	}
}

func TestBuildRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.BvP.Backend = "redis"

	_, err := Build(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestBoardOptionsFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Board.TopN = 5
	cfg.Board.LookbackDays = 14
	cfg.BvP.Path = filepath.Join(t.TempDir(), "bvp_cache.parquet")

	a, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	opts := a.BoardOptions()
	assert.Equal(t, 5, opts.TopN)
	assert.Equal(t, 14, opts.LookbackDays)
}

func TestHTTPClientConfig(t *testing.T) {
	cfg := httpClientConfig(config.HTTPSourceConfig{TimeoutSeconds: 25, MaxRetries: 2, RateLimit: 3})
	assert.Equal(t, 25*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 3.0, cfg.RateLimit)
}
