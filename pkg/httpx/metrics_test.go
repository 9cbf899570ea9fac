package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/healthmate/server/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsRecordsRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := httpx.NewHTTPMetrics(httpx.HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /diagnosis/{reportId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := httpx.Chain(mux, metrics.Middleware())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagnosis/01HZX", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	labels := prometheus.Labels{"method": http.MethodGet, "route": "GET /diagnosis/{reportId}", "status": "201"}
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.With(labels)))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
	require.NotZero(t, testutil.CollectAndCount(metrics.Duration))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	unmatched := prometheus.Labels{"method": http.MethodGet, "route": "unmatched", "status": "404"}
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.With(unmatched)))
}

func TestHTTPMetricsNoopWhenNil(t *testing.T) {
	handler := httpx.Chain(okHandler(), (*httpx.HTTPMetrics)(nil).Middleware())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHTTPMetricsTwiceReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := httpx.NewHTTPMetrics(httpx.HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)
	second, err := httpx.NewHTTPMetrics(httpx.HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)
	require.Same(t, first.Requests, second.Requests)
}
