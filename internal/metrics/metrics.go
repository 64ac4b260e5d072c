// Package metrics provides the centralized Prometheus metrics registry for the board.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mlb_board"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BoardRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of daily board runs by outcome",
	}, []string{"status"})
	BoardRowsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_skipped_total",
		Help:      "Total number of board rows skipped because of errors",
	}, []string{"board"})
	StatcastCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "statcast_cache_requests_total",
		Help:      "Statcast window cache lookups by result",
	}, []string{"result"})
	BvPLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bvp_lookups_total",
		Help:      "Batter-vs-pitcher cache lookups by result",
	}, []string{"result"})
	BvPPersistenceErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bvp_persistence_errors_total",
		Help:      "Ignored batter-vs-pitcher cache load and save failures",
	}, []string{"operation"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests to upstream data sources by source and outcome",
	}, []string{"source", "outcome"})
)

// Gauge metrics
var (
	BoardCandidates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "candidates",
		Help:      "Candidates collected for the latest board run",
	}, []string{"kind"})
	StatcastCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "statcast_cache_hit_ratio",
		Help:      "Hit ratio of the in-process Statcast window cache",
	})
	BvPCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bvp_cache_entries",
		Help:      "Number of matchup rows held in the BvP cache",
	})
	LastBoardSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful board run",
	})
)

// Histogram metrics
var (
	BoardRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of daily board runs in seconds",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200, 2400},
	})
	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of upstream data source requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BoardRunsTotal)
		registry.MustRegister(BoardRowsSkippedTotal)
		registry.MustRegister(StatcastCacheRequestsTotal)
		registry.MustRegister(BvPLookupsTotal)
		registry.MustRegister(BvPPersistenceErrorsTotal)
		registry.MustRegister(UpstreamRequestsTotal)

		registry.MustRegister(BoardCandidates)
		registry.MustRegister(StatcastCacheHitRatio)
		registry.MustRegister(BvPCacheEntries)
		registry.MustRegister(LastBoardSuccess)

		registry.MustRegister(BoardRunDuration)
		registry.MustRegister(UpstreamRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBoardRun records a finished board run.
func RecordBoardRun(success bool, durationSeconds float64, finishedUnix float64) {
	if success {
		BoardRunsTotal.WithLabelValues("success").Inc()
		LastBoardSuccess.Set(finishedUnix)
	} else {
		BoardRunsTotal.WithLabelValues("failure").Inc()
	}
	BoardRunDuration.Observe(durationSeconds)
}

// RecordRowSkipped records a board row dropped after an error.
func RecordRowSkipped(board string) {
	BoardRowsSkippedTotal.WithLabelValues(board).Inc()
}

// RecordCandidates records the candidate pool size for the current run.
func RecordCandidates(hitters, pitchers int) {
	BoardCandidates.WithLabelValues("hitters").Set(float64(hitters))
	BoardCandidates.WithLabelValues("pitchers").Set(float64(pitchers))
}

// RecordStatcastCache records a window cache lookup and the running hit ratio.
func RecordStatcastCache(hit bool, ratio float64) {
	if hit {
		StatcastCacheRequestsTotal.WithLabelValues("hit").Inc()
	} else {
		StatcastCacheRequestsTotal.WithLabelValues("miss").Inc()
	}
	StatcastCacheHitRatio.Set(ratio)
}

// RecordBvPLookup records a BvP cache lookup outcome: fresh, refreshed or error.
func RecordBvPLookup(result string, entries int) {
	BvPLookupsTotal.WithLabelValues(result).Inc()
	BvPCacheEntries.Set(float64(entries))
}

// RecordBvPPersistenceError records an ignored cache load or save failure.
func RecordBvPPersistenceError(operation string) {
	BvPPersistenceErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordUpstreamRequest records a request to an upstream data source.
func RecordUpstreamRequest(source string, success bool, durationSeconds float64) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(source, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(source).Observe(durationSeconds)
}
