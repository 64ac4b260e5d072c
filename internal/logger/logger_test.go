package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := New(buf, "debug", "production")
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(&bytes.Buffer{}, tt.level, "development")
			assert.Equal(t, tt.expected, log.GetLevel())
			assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
		})
	}
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	log, buf := setupTestLogger()
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log.WithField("batter_id", 1).Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestBoardLoggerRowSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	boardLogger := NewBoardLogger(log)

	boardLogger.LogRowSkipped("hitters", 660271, errors.New("statcast unavailable"))

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "board", entry["component"])
	assert.Equal(t, "hitters", entry["board"])
	assert.Equal(t, float64(660271), entry["player_id"])
	assert.Equal(t, "statcast unavailable", entry["error"])
	assert.Equal(t, "warning", entry["level"])
}

func TestBoardLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	boardLogger := NewBoardLogger(log)

	boardLogger.LogBoardCompleted("run-1", "2025-06-01", 200, 30, 4, 1500*time.Millisecond)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, float64(200), entry["hitter_rows"])
	assert.Equal(t, float64(1500), entry["duration_ms"])
}

func TestDiscardLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Info("dropped")
	})
}
