package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric returns the first sample of family name whose labels include want.
func findMetric(t *testing.T, registry *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
					break
				}
			}
			if match {
				return metric
			}
		}
	}
	return nil
}

func TestHTTPMetrics(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	m.RecordHTTPRequest(http.MethodGet, "/codes/:slug", http.StatusOK, 0.05)
	m.RecordHTTPRequest(http.MethodGet, "/codes/:slug", http.StatusOK, 0.07)
	m.RecordHTTPRequest(http.MethodGet, "/codes/:slug", http.StatusNotFound, 0.01)
	m.RecordHTTPRequestError(http.MethodGet, "/codes/:slug", "not-found")
	m.RecordHTTPResponseSize(http.MethodGet, "/codes/:slug", 2048)
	m.RecordTemplateRender("snippet", 0.003)
	m.RecordTemplateRenderError("snippet")

	assert.InDelta(t, 2, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/codes/:slug", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestErrors.WithLabelValues(http.MethodGet, "/codes/:slug", "not-found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.templateRenderErrors.WithLabelValues("snippet")), 0)

	duration := findMetric(t, registry, "http_request_duration_seconds", map[string]string{"path": "/codes/:slug"})
	require.NotNil(t, duration)
	assert.Equal(t, uint64(3), duration.GetHistogram().GetSampleCount())

	size := findMetric(t, registry, "http_response_size_bytes", nil)
	require.NotNil(t, size)
	assert.InDelta(t, 2048, size.GetHistogram().GetSampleSum(), 0)
}

func TestHTTPMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	_, err := NewHTTPMetrics(registry)
	require.NoError(t, err)
	_, err = NewHTTPMetrics(registry)
	assert.Error(t, err)
}

func TestCMSMetrics(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	m, err := NewCMSMetrics(registry)
	require.NoError(t, err)

	m.RequestCompleted("codes", "200", 120*time.Millisecond)
	m.RequestCompleted("users/12", "404", 30*time.Millisecond)
	m.RequestCompleted("users/13", "404", 30*time.Millisecond)
	m.CacheHit("codes")
	m.CacheHit("codes")
	m.CacheMiss("codes")

	assert.InDelta(t, 1, testutil.ToFloat64(m.requestsTotal.WithLabelValues("codes", "200")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.requestsTotal.WithLabelValues("users/:id", "404")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheLookups.WithLabelValues("codes", LabelHit)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheLookups.WithLabelValues("codes", LabelMiss)), 0)

	hist := findMetric(t, registry, "cms_request_duration_seconds", map[string]string{"endpoint": "codes"})
	require.NotNil(t, hist)
	assert.InDelta(t, 0.12, hist.GetHistogram().GetSampleSum(), 0.0001)
}

func TestBlockMetrics(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	m, err := NewBlockMetrics(registry)
	require.NoError(t, err)

	m.BlockRendered("code")
	m.BlockRendered("code")
	m.BlockDropped("bloque_video")
	m.BlockDropped("")

	assert.InDelta(t, 2, testutil.ToFloat64(m.rendered.WithLabelValues("code")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dropped.WithLabelValues("bloque_video")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dropped.WithLabelValues("other")), 0)
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "codes", normalizeEndpoint("codes"))
	assert.Equal(t, "users/:id", normalizeEndpoint("users/7"))
}
