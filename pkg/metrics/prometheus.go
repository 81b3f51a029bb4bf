// Package metrics provides Prometheus metrics for the vibefeed recommendation service.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the vibefeed service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	sizeBuckets      []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Feed metrics
	feedRequests     *prometheus.CounterVec
	feedDuration     prometheus.Histogram
	feedCandidates   prometheus.Histogram
	feedSectionSizes *prometheus.HistogramVec

	// Upstream metrics
	directoryFetches *prometheus.CounterVec
	directoryLatency *prometheus.HistogramVec
	weatherFetches   *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vibefeed",
		subsystem:        "feed",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		sizeBuckets:      []float64{0, 1, 5, 10, 20, 40, 60, 80, 120},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.feedRequests = m.counterVec("requests_total",
		"Feed requests by outcome (ok, config_error, bad_request)", "outcome")
	m.feedDuration = m.histogram("duration_milliseconds",
		"End-to-end feed build time in milliseconds", m.histogramBuckets)
	m.feedCandidates = m.histogram("candidates",
		"Candidates left after merge and truncation", m.sizeBuckets)
	m.feedSectionSizes = m.histogramVec("section_size",
		"Places returned per section", m.sizeBuckets, "section")

	m.directoryFetches = m.counterVec("directory_fetches_total",
		"Places directory calls by provider, category and outcome", "provider", "category", "outcome")
	m.directoryLatency = m.histogramVec("directory_latency_milliseconds",
		"Places directory call latency in milliseconds", m.histogramBuckets, "provider")
	m.weatherFetches = m.counterVec("weather_fetches_total",
		"Weather provider calls by outcome", "outcome")
	m.cacheLookups = m.counterVec("cache_lookups_total",
		"Upstream cache lookups by cache and result", "cache", "result")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
}

// RecordFeedRequest counts a feed request by outcome.
func RecordFeedRequest(outcome string) {
	globalManager.feedRequests.WithLabelValues(outcome).Inc()
}

// RecordFeedDuration records feed build time in milliseconds.
func RecordFeedDuration(ms float64) {
	globalManager.feedDuration.Observe(ms)
}

// RecordFeedCandidates records the candidate count of one feed.
func RecordFeedCandidates(n int) {
	globalManager.feedCandidates.Observe(float64(n))
}

// RecordSectionSize records the size of one built section.
func RecordSectionSize(section string, n int) {
	globalManager.feedSectionSizes.WithLabelValues(section).Observe(float64(n))
}

// RecordDirectoryFetch counts one directory call.
func RecordDirectoryFetch(provider, category, outcome string) {
	globalManager.directoryFetches.WithLabelValues(provider, category, outcome).Inc()
}

// RecordDirectoryLatency records directory call latency in milliseconds.
func RecordDirectoryLatency(provider string, ms float64) {
	globalManager.directoryLatency.WithLabelValues(provider).Observe(ms)
}

// RecordWeatherFetch counts one weather provider call.
func RecordWeatherFetch(outcome string) {
	globalManager.weatherFetches.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

// RegisterRuntimeCollectors adds Go runtime and process metrics to the
// custom registry. Repeated calls are no-ops.
func RegisterRuntimeCollectors() error {
	var err error
	runtimeOnce.Do(func() {
		err = errors.Join(
			customRegistry.Register(collectors.NewGoCollector()),
			customRegistry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
		)
	})
	return err
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
