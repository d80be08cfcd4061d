// Package metrics provides Prometheus metrics for the shelf catalog service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultRefreshInterval is how often the server samples runtime gauges.
const defaultRefreshInterval = 10 * time.Second

// Buckets for result-size histograms. The catalog holds tens of records.
var defaultResultSizeBuckets = []float64{0, 1, 2, 5, 10, 20, 50, 100, 250} //nolint:gochecknoglobals // immutable bucket layout

// Manager manages all Prometheus metrics for the shelf service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	sizeBuckets      []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	catalogLoads       *prometheus.CounterVec
	catalogLoadLatency prometheus.Histogram
	rowsDropped        *prometheus.CounterVec
	coercionFallbacks  *prometheus.CounterVec
	catalogGames       prometheus.Gauge
	catalogCategories  prometheus.Gauge

	// Filter engine
	filterLatency  prometheus.Histogram
	visibleGames   prometheus.Histogram
	sessionsActive prometheus.Gauge
	sessionsEvict  prometheus.Counter
	intents        *prometheus.CounterVec
	signals        *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "shelf",
		subsystem:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval returns how often runtime gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RefreshInterval returns the sampling interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.catalogLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("loads_total"),
		Help:        "Catalog loads by the source that ended up serving the data",
	}, []string{"source"})

	m.catalogLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("load_duration_milliseconds"),
		Help:        "Catalog load duration in milliseconds, fetch and fallback included",
		Buckets:     m.histogramBuckets,
	})

	m.rowsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("rows_dropped_total"),
		Help:        "Rows discarded during ingestion because the name column was empty",
	}, []string{"table"})

	m.coercionFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("coercion_fallbacks_total"),
		Help:        "Field values that could not be parsed and were replaced by their default",
	}, []string{"field"})

	m.catalogGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("games"),
		Help:        "Number of games in the current catalog snapshot",
	})

	m.catalogCategories = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("categories"),
		Help:        "Number of category records in the current catalog snapshot",
	})

	m.filterLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("filter_duration_milliseconds"),
		Help:        "Time spent computing a visible game list",
		Buckets:     m.histogramBuckets,
	})

	m.visibleGames = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("visible_games"),
		Help:        "Size of computed visible game lists",
		Buckets:     m.sizeBuckets,
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("sessions_active"),
		Help:        "Number of browsing sessions held in memory",
	})

	m.sessionsEvict = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("sessions_evicted_total"),
		Help:        "Sessions dropped because the registry was full",
	})

	m.intents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("intents_total"),
		Help:        "Filter state intents applied, by kind",
	}, []string{"kind"})

	m.signals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("signals_published_total"),
		Help:        "Messages published on session buses, by topic",
	}, []string{"topic"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		ConstLabels: labels,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "HTTP error responses by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		ConstLabels: labels,
		Name:        m.name("memory_bytes"),
		Help:        "Allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		ConstLabels: labels,
		Name:        m.name("goroutines"),
		Help:        "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		ConstLabels: labels,
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.histogramBuckets,
	})
}

// RecordCatalogLoad counts a finished load and its duration.
func RecordCatalogLoad(source string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogLoads.WithLabelValues(source).Inc()
	globalManager.catalogLoadLatency.Observe(durationMs)
}

// RecordRowsDropped counts rows discarded from table.
func RecordRowsDropped(table string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.rowsDropped.WithLabelValues(table).Add(float64(n))
}

// RecordCoercionFallback counts a field value replaced by its default.
func RecordCoercionFallback(field string) {
	if !globalManager.enabled {
		return
	}
	globalManager.coercionFallbacks.WithLabelValues(field).Inc()
}

// UpdateCatalogSize sets the snapshot size gauges.
func UpdateCatalogSize(games, categories int) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogGames.Set(float64(games))
	globalManager.catalogCategories.Set(float64(categories))
}

// RecordFilterCompute observes one visible-list computation.
func RecordFilterCompute(durationMs float64, visible int) {
	if !globalManager.enabled {
		return
	}
	globalManager.filterLatency.Observe(durationMs)
	globalManager.visibleGames.Observe(float64(visible))
}

// UpdateSessionsActive sets the number of live sessions.
func UpdateSessionsActive(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsActive.Set(float64(n))
}

// RecordSessionEvicted counts a session dropped by the registry.
func RecordSessionEvicted() {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsEvict.Inc()
}

// RecordIntent counts an applied intent.
func RecordIntent(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.intents.WithLabelValues(kind).Inc()
}

// RecordSignal counts a message published on a session bus.
func RecordSignal(topic string) {
	if !globalManager.enabled {
		return
	}
	globalManager.signals.WithLabelValues(topic).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the system goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records system GC pause time.
func RecordSystemGCPauseTime(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
