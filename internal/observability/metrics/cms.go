package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CMSMetrics tracks content API traffic. It satisfies the CMS client observer.
type CMSMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
}

// NewCMSMetrics creates and registers the content API metrics.
func NewCMSMetrics(registry *prometheus.Registry) (*CMSMetrics, error) {
	m := &CMSMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cms_requests_total",
				Help: "Total number of content API requests",
			},
			[]string{"endpoint", "status"}, // status: HTTP status code or "error"
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cms_request_duration_seconds",
				Help:    "Time taken for content API requests",
				Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12), // 10ms to ~40s
			},
			[]string{"endpoint"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cms_cache_lookups_total",
				Help: "Content API response cache lookups",
			},
			[]string{"endpoint", "result"}, // result: hit, miss
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.cacheLookups} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RequestCompleted records one round trip.
func (m *CMSMetrics) RequestCompleted(endpoint, status string, duration time.Duration) {
	endpoint = normalizeEndpoint(endpoint)
	m.requestsTotal.WithLabelValues(endpoint, status).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// CacheHit records a response served from cache.
func (m *CMSMetrics) CacheHit(endpoint string) {
	m.cacheLookups.WithLabelValues(normalizeEndpoint(endpoint), LabelHit).Inc()
}

// CacheMiss records a lookup that went to the network.
func (m *CMSMetrics) CacheMiss(endpoint string) {
	m.cacheLookups.WithLabelValues(normalizeEndpoint(endpoint), LabelMiss).Inc()
}

// normalizeEndpoint collapses per-resource paths such as users/12 to keep
// label cardinality bounded.
func normalizeEndpoint(endpoint string) string {
	for i := 0; i < len(endpoint); i++ {
		if endpoint[i] == '/' {
			return endpoint[:i] + "/:id"
		}
	}
	return endpoint
}
