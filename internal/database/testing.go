package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jasemartin/mlb-top10-probability/internal/config"
)

// SetupTestDB connects to the database named by MLB_BOARD_TEST_DB_* variables
// and ensures the schema exists. The test is skipped when MLB_BOARD_TEST_DB_HOST is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("MLB_BOARD_TEST_DB_HOST")
	if host == "" {
		t.Skip("MLB_BOARD_TEST_DB_HOST not set, skipping database test")
	}

	port := 5432
	if p, err := strconv.Atoi(os.Getenv("MLB_BOARD_TEST_DB_PORT")); err == nil {
		port = p
	}
	cfg := &config.DatabaseConfig{
		Enabled:        true,
		Host:           host,
		Port:           port,
		Name:           envOr("MLB_BOARD_TEST_DB_NAME", "mlb_board_test"),
		User:           envOr("MLB_BOARD_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("MLB_BOARD_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to prepare test schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
