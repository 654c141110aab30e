// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TradesProcessed *prometheus.CounterVec
	FeedMessages    prometheus.Counter
	FeedReconnects  prometheus.Counter
	ShardQueueDepth *prometheus.GaugeVec
	EventRetries    prometheus.Counter
	EventsDropped   prometheus.Counter

	// Position metrics
	PositionsOpened prometheus.Counter
	PositionsClosed prometheus.Counter

	// Alert metrics
	AlertsQueued    prometheus.Counter
	AlertsDelivered *prometheus.CounterVec

	// Latency metrics
	EventProcessingLatency prometheus.Histogram

	// Archive metrics
	TradesArchived prometheus.Counter

	// Health metrics
	LastEventTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "smart_money_tracker"
	}

	return &Metrics{
		// Ingestion metrics
		TradesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_processed_total",
			Help:      "Total number of trade events handled by result",
		}, []string{"result"}),
		FeedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_total",
			Help:      "Total number of feed messages received",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),
		ShardQueueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "shard_queue_depth",
			Help:      "Current number of events waiting per worker shard",
		}, []string{"shard"}),
		EventRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "event_retries_total",
			Help:      "Total number of transient-failure retries",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped after exhausting retries",
		}),

		// Position metrics
		PositionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "opened_total",
			Help:      "Total number of position lots opened",
		}),
		PositionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "closed_total",
			Help:      "Total number of position lots closed",
		}),

		// Alert metrics
		AlertsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "queued_total",
			Help:      "Total number of alerts queued",
		}),
		AlertsDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "delivered_total",
			Help:      "Total number of alert deliveries by status",
		}, []string{"status"}),

		// Latency metrics
		EventProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "event_processing_latency_seconds",
			Help:      "End-to-end latency of one trade event in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Archive metrics
		TradesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "trades_archived_total",
			Help:      "Total number of trades flushed to the archive",
		}),

		// Health metrics
		LastEventTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_event_timestamp",
			Help:      "Unix timestamp of the last processed trade event",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeProcessed increments the processed counter for a result label.
func RecordTradeProcessed(result string) {
	DefaultMetrics.TradesProcessed.WithLabelValues(result).Inc()
}

// RecordFeedMessage increments the feed message counter.
func RecordFeedMessage() {
	DefaultMetrics.FeedMessages.Inc()
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordAlertQueued increments the queued alert counter.
func RecordAlertQueued() {
	DefaultMetrics.AlertsQueued.Inc()
}

// RecordAlertDelivered increments the delivery counter for a status label.
func RecordAlertDelivered(status string) {
	DefaultMetrics.AlertsDelivered.WithLabelValues(status).Inc()
}
