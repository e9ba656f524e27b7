package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/v1/reels", http.StatusOK, 20*time.Millisecond)
	m.Observe(http.MethodGet, "/api/v1/reels", http.StatusOK, 30*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "ssm_http_requests_total", "route", "/api/v1/reels")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "ssm_http_requests_total", "route", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "ssm_http_request_duration_seconds", "route", "/api/v1/reels")
	require.NoError(t, err)
	assert.InDelta(t, 0.05, sum, 0.0001)
}

func TestEngagementMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngagementMetrics(reg)
	m.IncMutation("like")
	m.IncMutation("like")
	m.IncMutation("comment")
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "ssm_reel_engagement_mutations_total", "action", "like")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	gauge := findMetricFamily(mfs, "ssm_reel_engagement_streams")
	require.NotNil(t, gauge)
	assert.Equal(t, 1.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Second)
	var e *EngagementMetrics
	e.IncMutation("like")
	e.StreamOpened()
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewEngagementMetrics(reg).IncMutation("unlike")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `ssm_reel_engagement_mutations_total{action="unlike"} 1`))
}
