package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordReport("weekly_summary", OutcomeOK)
		m.RecordNarrativeCache("weekly_summary", true)
		m.RecordSkipped("weekly_summary", 3)
		m.RecordCacheWriteFailure("weekly_summary")
		m.ObserveStore("fetch_check_ins", time.Millisecond)
	})
}

func TestRecordCounters(t *testing.T) {
	m := New()

	m.RecordReport("mood_trigger", OutcomeDenied)
	m.RecordReport("mood_trigger", OutcomeDenied)
	m.RecordNarrativeCache("mood_trigger", false)
	m.RecordSkipped("mood_trigger", 2)
	m.RecordSkipped("mood_trigger", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("mood_trigger", OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NarrativeCache.WithLabelValues("mood_trigger", "miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SkippedRecords.WithLabelValues("mood_trigger")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordCacheWriteFailure("weekly_summary")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `moodtrack_cache_write_failures_total{kind="weekly_summary"} 1`)
}
