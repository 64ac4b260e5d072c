// Package config provides configuration management for the MLB probability board.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is used when no configuration path is given
	DefaultConfigPath = "config/config.yaml"
	envPrefix         = "MLB_BOARD"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing configuration file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mlb-top10-probability")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("stats_api.base_url", "https://statsapi.mlb.com/api/v1")
	v.SetDefault("stats_api.timeout_seconds", 25)
	v.SetDefault("stats_api.max_retries", 3)
	v.SetDefault("stats_api.rate_limit", 10.0)

	v.SetDefault("statcast.base_url", "https://baseballsavant.mlb.com/statcast_search/csv")
	v.SetDefault("statcast.timeout_seconds", 120)
	v.SetDefault("statcast.max_retries", 3)
	v.SetDefault("statcast.rate_limit", 2.0)
	v.SetDefault("statcast.cache_ttl_minutes", 360)

	v.SetDefault("bvp.backend", CacheBackendParquet)
	v.SetDefault("bvp.path", "data/bvp_cache.parquet")
	v.SetDefault("bvp.days_back", 730)
	v.SetDefault("bvp.refresh_days", 3)
	v.SetDefault("bvp.max_weight", 0.4)
	v.SetDefault("bvp.hr_barrel_boost", true)

	v.SetDefault("board.lookback_days", 30)
	v.SetDefault("board.park_multi", 1.0)
	v.SetDefault("board.park_k_multi", 1.0)
	v.SetDefault("board.opp_k_vs_hand", 0.22)
	v.SetDefault("board.top_n", 10)
	v.SetDefault("board.k_threshold", 6)
	v.SetDefault("board.persist", false)
	v.SetDefault("board.concurrency", 4)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "mlb_board")
	v.SetDefault("database.user", "mlb_board")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("scheduler.cron", "0 14 * * *")
	v.SetDefault("scheduler.timezone", "America/New_York")
	v.SetDefault("scheduler.timeout_minutes", 90)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", 8080)
}
