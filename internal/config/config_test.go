package config

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)
	return cfg
}

// TestLoadWithDefaultsMissingFile tests that defaults alone form a valid configuration
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg := defaultConfig(t)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, CacheBackendParquet, cfg.BvP.Backend)
	assert.Equal(t, "data/bvp_cache.parquet", cfg.BvP.Path)
	assert.Equal(t, 730, cfg.BvP.DaysBack)
	assert.Equal(t, 3, cfg.BvP.RefreshDays)
	assert.InDelta(t, 0.4, cfg.BvP.MaxWeight, 1e-9)
	assert.True(t, cfg.BvP.HRBarrelBoost)
	assert.Equal(t, 30, cfg.Board.LookbackDays)
	assert.Equal(t, 10, cfg.Board.TopN)
	assert.Equal(t, 6, cfg.Board.KThreshold)
	assert.InDelta(t, 0.22, cfg.Board.OppKVsHand, 1e-9)
	assert.Equal(t, 25*time.Second, cfg.StatsAPI.Timeout())
	assert.Equal(t, "https://baseballsavant.mlb.com/statcast_search/csv", cfg.Statcast.BaseURL)
	assert.Equal(t, 6*time.Hour, cfg.Statcast.CacheTTL())
	assert.False(t, cfg.NeedsDatabase())

	require.NoError(t, Validate(cfg))

	cfg.Database.Enabled = true
	assert.True(t, cfg.NeedsDatabase())
}

// TestLoadConfigSuccess tests loading a configuration file with env expansion
func TestLoadConfigSuccess(t *testing.T) {
	t.Setenv("MLB_BOARD_TEST_DATA_DIR", "/tmp/board")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "mlb-board-test", cfg.App.Name)
	assert.Equal(t, CacheBackendSQLite, cfg.BvP.Backend)
	assert.Equal(t, "/tmp/board/bvp.db", cfg.BvP.Path)
	assert.False(t, cfg.BvP.HRBarrelBoost)
	assert.Equal(t, 30*time.Minute, cfg.Statcast.CacheTTL())
	assert.Equal(t, 60, cfg.Statcast.TimeoutSeconds)
	assert.Equal(t, 7, cfg.Board.KThreshold)
	assert.InDelta(t, 1.05, cfg.Board.ParkMulti, 1e-9)
	assert.Equal(t, "America/Chicago", cfg.Scheduler.Location().String())
	assert.Equal(t, 9090, cfg.Health.Port)

	require.NoError(t, Validate(cfg))
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

// TestLoadWithDefaultsEnvOverride tests environment variable override
func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("MLB_BOARD_BOARD_TOP_N", "25")
	t.Setenv("MLB_BOARD_BVP_BACKEND", CacheBackendSQLite)

	cfg := defaultConfig(t)
	assert.Equal(t, 25, cfg.Board.TopN)
	assert.Equal(t, CacheBackendSQLite, cfg.BvP.Backend)
}

func TestValidateRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"environment", func(c *Config) { c.App.Environment = "qa" }, "Environment"},
		{"log level", func(c *Config) { c.App.LogLevel = "trace" }, "LogLevel"},
		{"cache backend", func(c *Config) { c.BvP.Backend = "csv" }, "parquet, sqlite, postgres"},
		{"cron", func(c *Config) { c.Scheduler.Cron = "every morning" }, "cron expression"},
		{"timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "IANA timezone"},
		{"top n", func(c *Config) { c.Board.TopN = 0 }, "TopN"},
		{"max weight", func(c *Config) { c.BvP.MaxWeight = 1.5 }, "MaxWeight"},
		{"empty cache path", func(c *Config) { c.BvP.Path = " " }, "bvp.path is required"},
		{"postgres without database", func(c *Config) { c.BvP.Backend = CacheBackendPostgres }, "database must be enabled"},
		{"persist without database", func(c *Config) { c.Board.Persist = true }, "database must be enabled"},
		{"lookback beyond history", func(c *Config) { c.Board.LookbackDays = 800 }, "lookback_days"},
		{"production without ssl", func(c *Config) {
			c.App.Environment = "production"
			c.Database.Enabled = true
		}, "SSL mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePostgresBackendWithDatabase(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.BvP.Backend = CacheBackendPostgres
	cfg.BvP.Path = ""
	cfg.Database.Enabled = true

	assert.True(t, cfg.NeedsDatabase())
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "postgres://mlb_board:@localhost:5432/mlb_board?sslmode=disable", cfg.GetDatabaseDSN())
}

func TestParseSecretData(t *testing.T) {
	secrets, err := parseSecretData(&secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_user":"svc","database_password":"s3cret"}`),
	})
	require.NoError(t, err)

	cfg := defaultConfig(t)
	overlaySecretsOnConfig(cfg, secrets)
	assert.Equal(t, "svc", cfg.Database.User)
	assert.Equal(t, "s3cret", cfg.Database.Password)

	_, err = parseSecretData(&secretsmanager.GetSecretValueOutput{})
	assert.ErrorIs(t, err, errNoSecretDataFound)

	_, err = parseSecretData(&secretsmanager.GetSecretValueOutput{SecretBinary: []byte("not json")})
	assert.Error(t, err)
}

func TestSecretsFromEnv(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "")
	enabled, _, _, err := SecretsFromEnv()
	require.NoError(t, err)
	assert.False(t, enabled)

	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	_, _, _, err = SecretsFromEnv()
	assert.Error(t, err)

	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_SECRET_NAME", "mlb-board/db")
	enabled, region, name, err := SecretsFromEnv()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, "us-east-1", region)
	assert.Equal(t, "mlb-board/db", name)
}
