package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeScheduler struct {
	running bool
	next    time.Time
}

type fakeBreaker bool

func (f fakeBreaker) IsOpen() bool { return bool(f) }

func (f fakeScheduler) IsRunning() bool       { return f.running }
func (f fakeScheduler) GetNextRun() time.Time { return f.next }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "board-scheduler", Version: "1.2.3", Port: "0"})

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)

	rec = get(t, s.Handler(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReflectsDependencies(t *testing.T) {
	next := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		ready     bool
		db        DatabasePinger
		scheduler SchedulerStatus
		wantCode  int
		wantCheck map[string]string
	}{
		{
			name:      "not marked ready",
			ready:     false,
			wantCode:  http.StatusServiceUnavailable,
			wantCheck: map[string]string{"service": "not_ready"},
		},
		{
			name:      "all healthy",
			ready:     true,
			db:        fakePinger{},
			scheduler: fakeScheduler{running: true, next: next},
			wantCode:  http.StatusOK,
			wantCheck: map[string]string{"service": "ok", "database": "ok", "scheduler": "ok"},
		},
		{
			name:      "database down",
			ready:     true,
			db:        fakePinger{err: errors.New("refused")},
			wantCode:  http.StatusServiceUnavailable,
			wantCheck: map[string]string{"service": "ok", "database": "error: refused"},
		},
		{
			name:      "scheduler stopped",
			ready:     true,
			scheduler: fakeScheduler{},
			wantCode:  http.StatusServiceUnavailable,
			wantCheck: map[string]string{"service": "ok", "scheduler": "stopped"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "board-scheduler", Port: "0", DB: tt.db, Scheduler: tt.scheduler})
			s.SetReady(tt.ready)

			rec := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCheck, body.Checks)
		})
	}
}

func TestReadyIncludesNextRun(t *testing.T) {
	next := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	s := NewServer(Config{Port: "0", Scheduler: fakeScheduler{running: true, next: next}})
	s.SetReady(true)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/ready").Body.Bytes(), &body))
	assert.Equal(t, "2024-06-01T18:00:00Z", body.NextRun)
}

func TestReadyReportsOpenCircuit(t *testing.T) {
	s := NewServer(Config{Port: "0", Upstreams: map[string]CircuitBreaker{
		"statsapi": fakeBreaker(false),
		"statcast": fakeBreaker(true),
	}})
	s.SetReady(true)

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["upstream_statsapi"])
	assert.Equal(t, "circuit_open", body.Checks["upstream_statcast"])
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mlb_board_board_runs_total 1\n"))
	})

	s := NewServer(Config{Port: "0", Metrics: metrics, MetricsPath: "/internal/metrics"})
	rec := get(t, s.Handler(), "/internal/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "board_runs_total")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)

	bare := NewServer(Config{Port: "0"})
	assert.Equal(t, http.StatusNotFound, get(t, bare.Handler(), "/metrics").Code)
}
