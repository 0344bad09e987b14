package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabled(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(Config{Enabled: false}, "registry-server", "1.0.0")
	require.NoError(t, err)
	require.NotNil(t, p.MeterProvider())
	require.NotNil(t, p.Handler())

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewProviderEnabledServesScrapes(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(Config{Enabled: true}, "registry-server", "1.0.0")
	require.NoError(t, err)

	metrics, err := NewHTTPMetrics(p.MeterProvider())
	require.NoError(t, err)
	require.NotNil(t, metrics)

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scrape := httptest.NewRecorder()
	p.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), "modreg_http_requests_total")
}

func TestHTTPMetricsNilIsPassThrough(t *testing.T) {
	t.Parallel()

	var metrics *HTTPMetrics
	called := false
	handler := metrics.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestScoringMetrics(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(Config{Enabled: true}, "registry-server", "1.0.0")
	require.NoError(t, err)

	metrics, err := NewScoringMetrics(p.MeterProvider())
	require.NoError(t, err)
	require.NotNil(t, metrics)

	metrics.RecordScoring(context.Background(), "MODEL", 2*time.Second)
	metrics.RecordIngest(context.Background(), "model", true)
	metrics.RecordIngest(context.Background(), "model", false)

	scrape := httptest.NewRecorder()
	p.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, "modreg_scoring_duration_seconds")
	assert.Contains(t, body, "modreg_ingests_total")
}

func TestScoringMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var metrics *ScoringMetrics
	metrics.RecordScoring(context.Background(), "MODEL", time.Second)
	metrics.RecordIngest(context.Background(), "model", true)

	got, err := NewScoringMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
