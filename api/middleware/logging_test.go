package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/metrics"
)

func TestLoggingAndMetricsKeepFlusher(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Metrics(metrics.NewHTTPMetrics(reg)))
	r.Use(Logging(logger.New(logger.Options{ServiceName: "test", Output: io.Discard})))

	flushed := false
	r.Get("/api/v1/reels/events", func(w http.ResponseWriter, req *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok, "response writer must remain a flusher")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {}\n\n"))
		f.Flush()
		flushed = true
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reels/events", nil))

	assert.True(t, flushed)
	assert.True(t, rec.Flushed)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "ssm_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/api/v1/reels/events" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "expected request counted under its route pattern")
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := recorderFor(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rec.code())
	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, rec.code())
	assert.Same(t, rec, recorderFor(rec))
}

func TestCORSOriginsMergesAndDedups(t *testing.T) {
	got := corsOrigins([]string{"https://ssmdetailing.ro/", " https://staging.ssmdetailing.ro ", ""})
	assert.Contains(t, got, "https://staging.ssmdetailing.ro")
	count := 0
	for _, o := range got {
		if o == "https://ssmdetailing.ro" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
