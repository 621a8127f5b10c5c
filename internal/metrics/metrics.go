// Package metrics exposes Prometheus collectors for sentiboard.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_aggregations_total",
			Help: "Total number of dashboard aggregations built",
		},
		[]string{"filter"},
	)

	SkippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_skipped_records_total",
			Help: "Total number of malformed records excluded from aggregation",
		},
		[]string{"reason"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiboard_fetch_duration_seconds",
			Help:    "Duration of record fetches from the upstream API",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"}, // status: success|error
	)

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_cache_requests_total",
			Help: "Record cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Aggregations)
		prometheus.MustRegister(SkippedRecords)
		prometheus.MustRegister(FetchDuration)
		prometheus.MustRegister(CacheRequests)
	})
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAggregation counts one built result and its skipped records.
func RecordAggregation(filter string, skipped map[string]int) {
	Aggregations.WithLabelValues(filter).Inc()
	for reason, n := range skipped {
		SkippedRecords.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordFetch records an upstream fetch.
func RecordFetch(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCache records a cache lookup outcome.
func RecordCache(result string) {
	CacheRequests.WithLabelValues(result).Inc()
}
