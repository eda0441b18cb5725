// Package metrics provides Prometheus metrics for the burden explorer service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the explorer service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	renders        *prometheus.CounterVec
	renderLatency  *prometheus.HistogramVec
	joinRows       prometheus.Histogram
	joinExclusions *prometheus.CounterVec
	joinCacheHits  prometheus.Counter
	joinCacheMiss  prometheus.Counter

	// Sessions
	sessions      prometheus.Gauge
	sessionDrops  prometheus.Counter
	sessionEvents *prometheus.CounterVec

	// Dataset
	datasetRecords prometheus.Gauge
	datasetShapes  prometheus.Gauge
	datasetCodes   prometheus.Gauge
	datasetDropped *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec

	// Warmup queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerActive       prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter
	warmupJobs         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
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
		namespace:        "burden",
		subsystem:        "explorer",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.renders = auto.NewCounterVec(m.counter("renders_total", "Total number of rendered views by output kind"), []string{"kind"})
	m.renderLatency = auto.NewHistogramVec(m.histogram("render_latency_milliseconds", "Render latency in milliseconds by output kind", nil), []string{"kind"})
	m.joinRows = auto.NewHistogram(m.histogram("join_rows", "Number of joined rows per computed join",
		[]float64{0, 25, 50, 100, 150, 200, 250}))
	m.joinExclusions = auto.NewCounterVec(m.counter("join_exclusions_total", "Shapes excluded from a computed join by reason"), []string{"reason"})
	m.joinCacheHits = auto.NewCounter(m.counter("join_cache_hits_total", "Join cache hits"))
	m.joinCacheMiss = auto.NewCounter(m.counter("join_cache_misses_total", "Join cache misses"))

	m.sessions = auto.NewGauge(m.gauge("sessions", "Sessions currently held by the store"))
	m.sessionDrops = auto.NewCounter(m.counter("session_drops_total", "Sessions removed from the in-memory store, evicted or deleted"))
	m.sessionEvents = auto.NewCounterVec(m.counter("session_events_total", "Session events applied by type"), []string{"type"})

	m.datasetRecords = auto.NewGauge(m.gauge("dataset_records", "Burden records kept after load"))
	m.datasetShapes = auto.NewGauge(m.gauge("dataset_shapes", "Topology shapes with an id"))
	m.datasetCodes = auto.NewGauge(m.gauge("dataset_codes", "Rows of the ISO code table"))
	m.datasetDropped = auto.NewCounterVec(m.counter("dataset_dropped_total", "Burden rows dropped at load by reason"), []string{"reason"})
	m.fetchLatency = auto.NewHistogramVec(m.histogram("fetch_latency_milliseconds", "Startup fetch and parse latency by input",
		[]float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}), []string{"input"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current size of the warmup queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum warmup queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Warmup queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Current number of warmup workers"))
	m.workerActive = auto.NewGauge(m.gauge("worker_active_count", "Number of workers processing a job"))
	m.workerLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds", nil))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Total number of worker errors"))
	m.warmupJobs = auto.NewCounter(m.counter("warmup_jobs_total", "Total number of warmup joins completed"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "Last GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRender records one rendered view of kind and its latency.
func RecordRender(kind string, latencyMs float64) {
	globalManager.renders.WithLabelValues(kind).Inc()
	globalManager.renderLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordJoin records the size and exclusions of a freshly computed join.
func RecordJoin(rows, noCode, noRecord, noValue int) {
	globalManager.joinRows.Observe(float64(rows))
	globalManager.joinExclusions.WithLabelValues("no_code").Add(float64(noCode))
	globalManager.joinExclusions.WithLabelValues("no_record").Add(float64(noRecord))
	globalManager.joinExclusions.WithLabelValues("no_value").Add(float64(noValue))
}

// RecordJoinCacheHit increments the join cache hit counter.
func RecordJoinCacheHit() {
	globalManager.joinCacheHits.Inc()
}

// RecordJoinCacheMiss increments the join cache miss counter.
func RecordJoinCacheMiss() {
	globalManager.joinCacheMiss.Inc()
}

// UpdateSessionCount sets the number of stored sessions.
func UpdateSessionCount(n float64) {
	globalManager.sessions.Set(n)
}

// RecordSessionDrop increments the session drop counter.
func RecordSessionDrop() {
	globalManager.sessionDrops.Inc()
}

// RecordSessionEvent counts an applied session event.
func RecordSessionEvent(eventType string) {
	globalManager.sessionEvents.WithLabelValues(eventType).Inc()
}

// UpdateDatasetSize sets the dataset size gauges.
func UpdateDatasetSize(records, shapes, codes int) {
	globalManager.datasetRecords.Set(float64(records))
	globalManager.datasetShapes.Set(float64(shapes))
	globalManager.datasetCodes.Set(float64(codes))
}

// RecordDatasetDropped adds n dropped rows for reason.
func RecordDatasetDropped(reason string, n int) {
	globalManager.datasetDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordFetchLatency records how long loading input took.
func RecordFetchLatency(input string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(input).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWarmupJob increments the completed warmup counter.
func RecordWarmupJob() {
	globalManager.warmupJobs.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// CollectRuntime samples memory, goroutine and GC gauges.
func CollectRuntime() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		globalManager.systemGCPauseTime.Observe(float64(last) / 1e6)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
