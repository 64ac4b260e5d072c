package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := InitRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, GetRegistry())
}

func TestRecordBoardRun(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(BoardRunsTotal.WithLabelValues("success"))

	RecordBoardRun(true, 12.5, 1717250000)

	assert.Equal(t, before+1, testutil.ToFloat64(BoardRunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1717250000), testutil.ToFloat64(LastBoardSuccess))

	assert.NotPanics(t, func() {
		RecordBoardRun(false, 3, 0)
	})
}

func TestRecordRowSkipped(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(BoardRowsSkippedTotal.WithLabelValues("pitchers"))

	RecordRowSkipped("pitchers")
	RecordRowSkipped("pitchers")

	assert.Equal(t, before+2, testutil.ToFloat64(BoardRowsSkippedTotal.WithLabelValues("pitchers")))
}

func TestRecordCacheMetrics(t *testing.T) {
	InitRegistry()

	RecordStatcastCache(true, 0.75)
	assert.Equal(t, 0.75, testutil.ToFloat64(StatcastCacheHitRatio))

	RecordBvPLookup("fresh", 42)
	assert.Equal(t, float64(42), testutil.ToFloat64(BvPCacheEntries))

	RecordCandidates(180, 24)
	assert.Equal(t, float64(24), testutil.ToFloat64(BoardCandidates.WithLabelValues("pitchers")))

	assert.NotPanics(t, func() {
		RecordBvPPersistenceError("save")
		RecordUpstreamRequest("statsapi", true, 0.2)
		RecordUpstreamRequest("statcast", false, 3)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordRowSkipped("hitters")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mlb_board_rows_skipped_total")
}
