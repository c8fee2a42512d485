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
	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec

	// Reconciliation metrics
	ReconcileRuns        *prometheus.CounterVec
	ReconcileDuration    prometheus.Histogram
	TransfersClassified  *prometheus.CounterVec
	SignaturesScanned    prometheus.Counter
	DetailFetchFailures  prometheus.Counter
	ReconcilePartialRuns prometheus.Counter

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// Token metadata metrics
	MetadataLookups *prometheus.CounterVec

	// Live balance stream metrics
	WSSubscribers prometheus.Gauge

	// Archive metrics
	TransfersArchived prometheus.Counter
	ArchiveErrors     prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_dashboard"
	}

	return &Metrics{
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status class",
		}, []string{"route", "status"}),

		ReconcileRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total number of transfer reconciliation runs by outcome",
		}, []string{"outcome"}),
		ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Transfer reconciliation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 15, 20, 30},
		}),
		TransfersClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "transfers_classified_total",
			Help:      "Total number of transfers classified by direction",
		}, []string{"direction"}),
		SignaturesScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "signatures_scanned_total",
			Help:      "Total number of signatures scanned",
		}),
		DetailFetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "detail_fetch_failures_total",
			Help:      "Total number of transaction detail fetches that failed or timed out",
		}),
		ReconcilePartialRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "partial_runs_total",
			Help:      "Total number of reconciliation runs truncated by the fetch deadline",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		MetadataLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokenmeta",
			Name:      "lookups_total",
			Help:      "Total number of token metadata lookups by source and status",
		}, []string{"source", "status"}),

		WSSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "balance_subscribers",
			Help:      "Current number of live balance stream subscribers",
		}),

		TransfersArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "transfers_archived_total",
			Help:      "Total number of classified transfers written to the archive",
		}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "errors_total",
			Help:      "Total number of archive write failures",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordReconcileRun records one reconciliation run with its outcome.
func RecordReconcileRun(outcome string, seconds float64) {
	DefaultMetrics.ReconcileRuns.WithLabelValues(outcome).Inc()
	DefaultMetrics.ReconcileDuration.Observe(seconds)
}

// RecordTransferClassified increments the classified transfer counter.
func RecordTransferClassified(direction string) {
	DefaultMetrics.TransfersClassified.WithLabelValues(direction).Inc()
}

// RecordSignatureScanned increments the scanned signature counter.
func RecordSignatureScanned() {
	DefaultMetrics.SignaturesScanned.Inc()
}

// RecordDetailFetchFailure increments the failed detail fetch counter.
func RecordDetailFetchFailure() {
	DefaultMetrics.DetailFetchFailures.Inc()
}

// RecordPartialRun increments the deadline-truncated run counter.
func RecordPartialRun() {
	DefaultMetrics.ReconcilePartialRuns.Inc()
}

// RecordRPCCall observes the latency of one upstream RPC call.
func RecordRPCCall(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route string, statusClass string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, statusClass).Inc()
}

// StreamSubscriberConnected increments the live subscriber gauge.
func StreamSubscriberConnected() {
	DefaultMetrics.WSSubscribers.Inc()
}

// StreamSubscriberDisconnected decrements the live subscriber gauge.
func StreamSubscriberDisconnected() {
	DefaultMetrics.WSSubscribers.Dec()
}

// RecordMetadataLookup records one metadata lookup attempt.
func RecordMetadataLookup(source, status string) {
	DefaultMetrics.MetadataLookups.WithLabelValues(source, status).Inc()
}

// RecordTransfersArchived adds to the archived transfer counter.
func RecordTransfersArchived(n int) {
	DefaultMetrics.TransfersArchived.Add(float64(n))
}

// RecordArchiveError increments the archive failure counter.
func RecordArchiveError() {
	DefaultMetrics.ArchiveErrors.Inc()
}
