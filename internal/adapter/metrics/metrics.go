package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "winloss"

// APIMetrics holds the Prometheus metrics of the API server.
type APIMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RateLimitedTotal prometheus.Counter
	ChangeEvents     *prometheus.CounterVec
	WALActive        prometheus.Gauge
	ReportsGenerated prometheus.Counter
	ImportedTotal    *prometheus.CounterVec
}

// NewAPIMetrics creates the API metrics and registers them with reg.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	factory := promauto.With(reg)
	return &APIMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
		ChangeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changes",
			Name:      "events_total",
			Help:      "Total number of entity change events by status.",
		}, []string{"status"}), // status: published, error_publish, error_redact, skipped
		WALActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "changes",
			Name:      "wal_active_gauge",
			Help:      "Indicates if the Write-Ahead Log is currently active (1 for active, 0 for inactive).",
		}),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Total number of aggregate reports generated.",
		}),
		ImportedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "interviews_total",
			Help:      "Total number of interviews seen by the bulk importer by status.",
		}, []string{"status"}), // status: imported, rejected
	}
}

// ConsumerMetrics holds the Prometheus metrics of the change consumer.
type ConsumerMetrics struct {
	EventsTotal  *prometheus.CounterVec
	SinkRetries  prometheus.Counter
	BatchLatency prometheus.Histogram
}

// NewConsumerMetrics creates the consumer metrics and registers them with reg.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	factory := promauto.With(reg)
	return &ConsumerMetrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "events_total",
			Help:      "Total number of change events handled by the consumer by outcome.",
		}, []string{"status"}), // status: sunk, dlq
		SinkRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "sink_retries_total",
			Help:      "Total number of retried sink writes.",
		}),
		BatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "consumer",
			Name:      "batch_duration_seconds",
			Help:      "Time spent sinking one batch, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
