// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ledger metrics
	PurchasesTotal *prometheus.CounterVec
	ItemsAllocated prometheus.Counter
	ItemsAvailable prometheus.Gauge
	PaymentVolume  prometheus.Counter

	// Governance metrics
	ProposalsCreated   prometheus.Counter
	ProposalsCancelled prometheus.Counter
	VotesCast          *prometheus.CounterVec
	VoteWeight         *prometheus.CounterVec

	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Event metrics
	EventsCommitted     prometheus.Counter
	LastEventSequence   prometheus.Gauge
	SinkPublishErrors   *prometheus.CounterVec
	SinkPublishDuration *prometheus.HistogramVec
	StreamSubscribers   prometheus.Gauge
	EventLogBacklog     prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastReplayTimestamp prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "collection_governance"
	}

	return &Metrics{
		// Ledger metrics
		PurchasesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "purchases_total",
			Help:      "Total number of purchase attempts by outcome code",
		}, []string{"code"}),
		ItemsAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "items_allocated_total",
			Help:      "Total number of items assigned to holders",
		}),
		ItemsAvailable: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "items_available",
			Help:      "Number of items still owned by the ledger",
		}),
		PaymentVolume: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payment_volume_base_units_total",
			Help:      "Total payment-token base units charged by purchases",
		}),

		// Governance metrics
		ProposalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "proposals_created_total",
			Help:      "Total number of proposals created",
		}),
		ProposalsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "proposals_cancelled_total",
			Help:      "Total number of proposals cancelled",
		}),
		VotesCast: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "votes_cast_total",
			Help:      "Total number of votes cast by side",
		}, []string{"side"}),
		VoteWeight: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "vote_weight_total",
			Help:      "Total voting weight cast by side",
		}, []string{"side"}),

		// Operation metrics
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "operations_total",
			Help:      "Total number of operations by name and status",
		}, []string{"operation", "status"}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "operation_errors_total",
			Help:      "Total number of rejected operations by error code and category",
		}, []string{"operation", "code", "category"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "operation_duration_seconds",
			Help:      "Operation duration in seconds, including event dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		// Event metrics
		EventsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "committed_total",
			Help:      "Total number of events committed",
		}),
		LastEventSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "last_sequence",
			Help:      "Sequence number of the last committed event",
		}),
		SinkPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "sink_publish_errors_total",
			Help:      "Total number of failed sink publishes",
		}, []string{"sink"}),
		SinkPublishDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "sink_publish_duration_seconds",
			Help:      "Sink publish latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
		StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "stream_subscribers",
			Help:      "Number of connected event stream subscribers",
		}),
		EventLogBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "log_backlog",
			Help:      "Committed events waiting to be appended to the event log",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastReplayTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_replay_timestamp",
			Help:      "Unix timestamp of the last successful state replay",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordOperation records the outcome of one core operation.
// code and category are empty on success.
func RecordOperation(operation, code, category string, seconds float64) {
	DefaultMetrics.OperationDuration.WithLabelValues(operation).Observe(seconds)
	if code == "" {
		DefaultMetrics.OperationsTotal.WithLabelValues(operation, "success").Inc()
		return
	}
	DefaultMetrics.OperationsTotal.WithLabelValues(operation, "error").Inc()
	DefaultMetrics.OperationErrors.WithLabelValues(operation, code, category).Inc()
}

// RecordPurchase records a purchase attempt. code is "OK" on success.
func RecordPurchase(code string, items int, totalPrice uint64) {
	DefaultMetrics.PurchasesTotal.WithLabelValues(code).Inc()
	if items > 0 {
		DefaultMetrics.ItemsAllocated.Add(float64(items))
		DefaultMetrics.PaymentVolume.Add(float64(totalPrice))
	}
}

// UpdateItemsAvailable updates the available items gauge.
func UpdateItemsAvailable(n uint64) {
	DefaultMetrics.ItemsAvailable.Set(float64(n))
}

// RecordProposalCreated increments the proposals created counter.
func RecordProposalCreated() {
	DefaultMetrics.ProposalsCreated.Inc()
}

// RecordProposalCancelled increments the proposals cancelled counter.
func RecordProposalCancelled() {
	DefaultMetrics.ProposalsCancelled.Inc()
}

// RecordVote records an accepted vote and its weight.
func RecordVote(support bool, weight uint64) {
	side := "against"
	if support {
		side = "for"
	}
	DefaultMetrics.VotesCast.WithLabelValues(side).Inc()
	DefaultMetrics.VoteWeight.WithLabelValues(side).Add(float64(weight))
}

// RecordEventsCommitted records committed events and the latest sequence.
func RecordEventsCommitted(n int, lastSequence uint64) {
	DefaultMetrics.EventsCommitted.Add(float64(n))
	DefaultMetrics.LastEventSequence.Set(float64(lastSequence))
}

// RecordSinkPublish records a sink publish.
func RecordSinkPublish(sink string, seconds float64, err error) {
	DefaultMetrics.SinkPublishDuration.WithLabelValues(sink).Observe(seconds)
	if err != nil {
		DefaultMetrics.SinkPublishErrors.WithLabelValues(sink).Inc()
	}
}

// UpdateEventLogBacklog updates the event log backlog gauge.
func UpdateEventLogBacklog(n int) {
	DefaultMetrics.EventLogBacklog.Set(float64(n))
}

// UpdateStreamSubscribers updates the stream subscribers gauge.
func UpdateStreamSubscribers(n int) {
	DefaultMetrics.StreamSubscribers.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordReplay records a successful state replay at unix time ts.
func RecordReplay(ts int64) {
	DefaultMetrics.LastReplayTimestamp.Set(float64(ts))
}

// TrackUptime adds interval to the uptime counter on every tick until ctx is done.
func TrackUptime(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			DefaultMetrics.UptimeSeconds.Add(interval.Seconds())
		}
	}
}
