package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_IsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestRecordAggregation(t *testing.T) {
	before := testutil.ToFloat64(Aggregations.WithLabelValues("week"))
	skippedBefore := testutil.ToFloat64(SkippedRecords.WithLabelValues("missing_score"))

	RecordAggregation("week", map[string]int{"missing_score": 2})

	assert.Equal(t, before+1, testutil.ToFloat64(Aggregations.WithLabelValues("week")))
	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(SkippedRecords.WithLabelValues("missing_score")))
}

func TestRecordCache(t *testing.T) {
	before := testutil.ToFloat64(CacheRequests.WithLabelValues("hit"))

	RecordCache("hit")

	assert.Equal(t, before+1, testutil.ToFloat64(CacheRequests.WithLabelValues("hit")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	Init()
	RecordFetch(120*time.Millisecond, nil)
	RecordFetch(time.Second, errors.New("boom"))
	RecordAggregation("month", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sentiboard_fetch_duration_seconds_count{status="success"}`)
	assert.Contains(t, body, `sentiboard_fetch_duration_seconds_count{status="error"}`)
	assert.Contains(t, body, `sentiboard_aggregations_total{filter="month"}`)
}
