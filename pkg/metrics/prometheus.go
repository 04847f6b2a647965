// Package metrics provides Prometheus metrics for the auction draft engine.
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

// Manager manages all Prometheus metrics for the draft engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - Event ingestion and application
	eventsApplied   *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	eventsDuplicate prometheus.Counter
	unresolvedNames prometheus.Counter
	rosterOverflows prometheus.Counter

	// Event Store Metrics - Durability path
	storeAppendLatency prometheus.Histogram
	storeAppendErrors  prometheus.Counter
	corruptLogLines    prometheus.Counter
	replayDuration     prometheus.Histogram
	replayedEvents     prometheus.Counter

	// Market Metrics - Derived aggregate health
	inflationRatio   prometheus.Gauge
	remainingPlayers prometheus.Gauge
	remainingCash    prometheus.Gauge
	remainingValue   prometheus.Gauge

	// Advice Metrics - Valuation engine output
	adviceTotal   *prometheus.CounterVec
	adviceLatency prometheus.Histogram
	whatIfRuns    prometheus.Counter

	// Queue Metrics - Ingest queue health
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueDropped     prometheus.Counter

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "auction",
		subsystem:        "draft",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.eventsApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_applied_total",
			Help:      "Total number of draft events applied, by event kind",
		},
		[]string{"kind"},
	)

	m.eventsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_rejected_total",
			Help:      "Total number of rejected commands, by reason",
		},
		[]string{"reason"},
	)

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate ingest events detected",
	})

	m.unresolvedNames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unresolved_names_total",
		Help:      "Total number of player names that failed resolution",
	})

	m.rosterOverflows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_overflows_total",
		Help:      "Total number of acquisitions left without a roster slot",
	})

	m.storeAppendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_append_latency_milliseconds",
		Help:      "Histogram of event log append+flush latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeAppendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_append_errors_total",
		Help:      "Total number of event log append failures",
	})

	m.corruptLogLines = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corrupt_log_lines_total",
		Help:      "Total number of malformed event log lines skipped",
	})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_duration_milliseconds",
		Help:      "Histogram of event log replay duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.replayedEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replayed_events_total",
		Help:      "Total number of events replayed from the log on startup",
	})

	m.inflationRatio = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inflation_ratio",
		Help:      "Current market inflation ratio (remaining cash / remaining value)",
	})

	m.remainingPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remaining_players",
		Help:      "Number of undrafted players in the pool",
	})

	m.remainingCash = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remaining_cash_dollars",
		Help:      "Aggregate remaining budget across all teams",
	})

	m.remainingValue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remaining_value_dollars",
		Help:      "Aggregate baseline market value across undrafted players",
	})

	m.adviceTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "advice_total",
			Help:      "Total number of advice computations, by recommended action",
		},
		[]string{"action"},
	)

	m.adviceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advice_latency_milliseconds",
		Help:      "Histogram of advice computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.whatIfRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "what_if_runs_total",
		Help:      "Total number of what-if simulations executed",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the ingest event queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingest event queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Ingest queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of events enqueued for application",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of events dequeued by the applier",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dropped_total",
		Help:      "Total number of events dropped because the queue was full",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

// RecordEventApplied increments the applied-event counter for a kind.
func RecordEventApplied(kind string) {
	globalManager.eventsApplied.WithLabelValues(kind).Inc()
}

// RecordEventRejected increments the rejected-command counter for a reason.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordEventDuplicate increments the duplicate-event counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordUnresolvedName increments the unresolved-name counter.
func RecordUnresolvedName() {
	globalManager.unresolvedNames.Inc()
}

// RecordRosterOverflow increments the roster-overflow counter.
func RecordRosterOverflow() {
	globalManager.rosterOverflows.Inc()
}

// RecordStoreAppendLatency observes one append+flush latency sample.
func RecordStoreAppendLatency(latencyMs float64) {
	globalManager.storeAppendLatency.Observe(latencyMs)
}

// RecordStoreAppendError increments the append-failure counter.
func RecordStoreAppendError() {
	globalManager.storeAppendErrors.Inc()
}

// RecordCorruptLogLine increments the corrupt-line counter.
func RecordCorruptLogLine() {
	globalManager.corruptLogLines.Inc()
}

// RecordReplayDuration observes one replay duration sample.
func RecordReplayDuration(durationMs float64) {
	globalManager.replayDuration.Observe(durationMs)
}

// RecordReplayedEvents adds to the replayed-event counter.
func RecordReplayedEvents(n int) {
	globalManager.replayedEvents.Add(float64(n))
}

// UpdateInflationRatio sets the current inflation ratio gauge.
func UpdateInflationRatio(ratio float64) {
	globalManager.inflationRatio.Set(ratio)
}

// UpdateRemainingPlayers sets the undrafted-player gauge.
func UpdateRemainingPlayers(count int) {
	globalManager.remainingPlayers.Set(float64(count))
}

// UpdateRemainingCash sets the aggregate remaining cash gauge.
func UpdateRemainingCash(dollars int) {
	globalManager.remainingCash.Set(float64(dollars))
}

// UpdateRemainingValue sets the aggregate remaining value gauge.
func UpdateRemainingValue(dollars float64) {
	globalManager.remainingValue.Set(dollars)
}

// RecordAdvice increments the advice counter for an action.
func RecordAdvice(action string) {
	globalManager.adviceTotal.WithLabelValues(action).Inc()
}

// RecordAdviceLatency observes one advice computation latency sample.
func RecordAdviceLatency(latencyMs float64) {
	globalManager.adviceLatency.Observe(latencyMs)
}

// RecordWhatIfRun increments the what-if simulation counter.
func RecordWhatIfRun() {
	globalManager.whatIfRuns.Inc()
}

// UpdateQueueSize sets the ingest queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the ingest queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the ingest queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueDropped increments the dropped-event counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for exposition or test scraping.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
