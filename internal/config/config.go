// Package config provides configuration management for the MLB probability board.
package config

import (
	"fmt"
	"time"
)

// BvP cache storage backends
const (
	CacheBackendParquet  = "parquet"
	CacheBackendSQLite   = "sqlite"
	CacheBackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig        `mapstructure:"app" validate:"required"`
	StatsAPI  HTTPSourceConfig `mapstructure:"stats_api" validate:"required"`
	Statcast  StatcastConfig   `mapstructure:"statcast" validate:"required"`
	BvP       BvPConfig        `mapstructure:"bvp" validate:"required"`
	Board     BoardConfig      `mapstructure:"board" validate:"required"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig     `mapstructure:"health" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// HTTPSourceConfig configures a remote HTTP data source
type HTTPSourceConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// Timeout returns the request timeout as a duration
func (c HTTPSourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StatcastConfig configures Statcast event-log retrieval
type StatcastConfig struct {
	HTTPSourceConfig `mapstructure:",squash"`
	CacheTTLMinutes  int `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
}

// CacheTTL returns the in-process window cache TTL
func (c StatcastConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// BvPConfig configures the batter-vs-pitcher cache and blend
type BvPConfig struct {
	Backend       string  `mapstructure:"backend" validate:"required,cachebackend"`
	Path          string  `mapstructure:"path"`
	DaysBack      int     `mapstructure:"days_back" validate:"required,gt=0"`
	RefreshDays   int     `mapstructure:"refresh_days" validate:"required,gt=0"`
	MaxWeight     float64 `mapstructure:"max_weight" validate:"gte=0,lte=1"`
	HRBarrelBoost bool    `mapstructure:"hr_barrel_boost"`
}

// BoardConfig holds the default board parameters
type BoardConfig struct {
	LookbackDays int     `mapstructure:"lookback_days" validate:"required,gt=0"`
	ParkMulti    float64 `mapstructure:"park_multi" validate:"required,gt=0"`
	ParkKMulti   float64 `mapstructure:"park_k_multi" validate:"required,gt=0"`
	OppKVsHand   float64 `mapstructure:"opp_k_vs_hand" validate:"gte=0,lte=1"`
	TopN         int     `mapstructure:"top_n" validate:"required,gt=0"`
	KThreshold   int     `mapstructure:"k_threshold" validate:"required,gt=0"`
	Persist      bool    `mapstructure:"persist"`
	Concurrency  int     `mapstructure:"concurrency" validate:"gte=0,lte=32"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// SchedulerConfig configures the daily board job
type SchedulerConfig struct {
	Cron           string `mapstructure:"cron" validate:"required,cronspec"`
	Timezone       string `mapstructure:"timezone" validate:"required,timezone"`
	TimeoutMinutes int    `mapstructure:"timeout_minutes" validate:"required,gt=0"`
}

// Location resolves the configured timezone, falling back to UTC
func (c SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig configures the health and metrics HTTP server
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// NeedsDatabase reports whether a PostgreSQL connection should be opened:
// the database is enabled or a component stores data there
func (c *Config) NeedsDatabase() bool {
	return c.Database.Enabled || c.BvP.Backend == CacheBackendPostgres || c.Board.Persist
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
