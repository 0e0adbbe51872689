// Package metrics provides Prometheus metrics for the Montpellier site server and relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Latency buckets in milliseconds shared by the request and fetch histograms.
var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Content pipeline
	contentFetches       *prometheus.CounterVec
	contentFetchLatency  *prometheus.HistogramVec
	imageProbes          *prometheus.CounterVec
	galleryFallbacks     prometheus.Counter
	pageRenders          *prometheus.CounterVec
	pageRenderLatency    prometheus.Histogram
	galleryFilterApplied *prometheus.CounterVec

	// Contact form and relay
	formSubmissions  *prometheus.CounterVec
	relaySubmissions *prometheus.CounterVec
	smtpSendLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "montpellier",
		subsystem:        "site",
		histogramBuckets: defaultLatencyBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.contentFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("content_fetches_total"),
		Help:        "JSON content fetches by resource and outcome",
		ConstLabels: constLabels,
	}, []string{"resource", "outcome"})

	m.contentFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("content_fetch_latency_milliseconds"),
		Help:        "Latency of JSON content fetches",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"resource"})

	m.imageProbes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("image_probes_total"),
		Help:        "Image existence probes by outcome (found, missing)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.galleryFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("gallery_fallbacks_total"),
		Help:        "Times the gallery was built from the static fallback list",
		ConstLabels: constLabels,
	})

	m.pageRenders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("page_renders_total"),
		Help:        "Rendered pages by template and outcome",
		ConstLabels: constLabels,
	}, []string{"page", "outcome"})

	m.pageRenderLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("page_render_latency_milliseconds"),
		Help:        "Time to load all sections and render a page",
		Buckets:     []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		ConstLabels: constLabels,
	})

	m.galleryFilterApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("gallery_filters_total"),
		Help:        "Gallery filter applications by token",
		ConstLabels: constLabels,
	}, []string{"category"})

	m.formSubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("contact_form_submissions_total"),
		Help:        "Contact form submissions by final state and reason",
		ConstLabels: constLabels,
	}, []string{"state", "reason"})

	m.relaySubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        m.name("submissions_total"),
		Help:        "Relay submissions by outcome (invalid, logged, sent, failed)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.smtpSendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "relay",
		Name:        m.name("smtp_send_latency_milliseconds"),
		Help:        "Latency of single SMTP send attempts",
		Buckets:     []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_component_total"),
		Help:        "Errors by component and type",
		ConstLabels: constLabels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by HTTP endpoint",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "Allocated heap memory in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: constLabels,
	})
}

// RecordContentFetch records one JSON fetch and its latency.
func RecordContentFetch(resource, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.contentFetches.WithLabelValues(resource, outcome).Inc()
	globalManager.contentFetchLatency.WithLabelValues(resource).Observe(latencyMs)
}

// RecordImageProbe records an image existence probe.
func RecordImageProbe(found bool) {
	if !globalManager.enabled {
		return
	}
	outcome := "missing"
	if found {
		outcome = "found"
	}
	globalManager.imageProbes.WithLabelValues(outcome).Inc()
}

// RecordGalleryFallback records a gallery built from the fallback list.
func RecordGalleryFallback() {
	if !globalManager.enabled {
		return
	}
	globalManager.galleryFallbacks.Inc()
}

// RecordGalleryFilter records one filter application.
func RecordGalleryFilter(category string) {
	if !globalManager.enabled {
		return
	}
	globalManager.galleryFilterApplied.WithLabelValues(category).Inc()
}

// RecordPageRender records a rendered page.
func RecordPageRender(page, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.pageRenders.WithLabelValues(page, outcome).Inc()
	globalManager.pageRenderLatency.Observe(latencyMs)
}

// RecordFormSubmission records the final state of a contact form submission.
func RecordFormSubmission(state, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.formSubmissions.WithLabelValues(state, reason).Inc()
}

// RecordRelaySubmission records a relay outcome.
func RecordRelaySubmission(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.relaySubmissions.WithLabelValues(outcome).Inc()
}

// RecordSMTPSendLatency records the duration of one SMTP send attempt.
func RecordSMTPSendLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.smtpSendLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns how often system gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// Enabled reports whether the global manager records metrics.
func Enabled() bool {
	return globalManager.enabled
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
