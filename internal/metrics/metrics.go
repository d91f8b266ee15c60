// Package metrics declares the Prometheus instrumentation the engine
// updates as deals flow through compute and the executor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "triarb"
const subsystem = "trading"

// DealAgeMs is the book-snapshot age, in milliseconds, recorded for every
// cycle evaluation, whether or not it produces a deal.
var DealAgeMs = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deal_age_ms",
		Help:      "Age of the book snapshot behind each evaluated deal, in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	},
)

// DealProfitFraction is the optimizer's expected-profit fraction for every
// deal that clears both gates (before any execution attempt).
var DealProfitFraction = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deal_profit_fraction",
		Help:      "Expected profit fraction of accepted deals",
		Buckets:   []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
	},
)

// DealsAcceptedTotal counts deals ComputeLoop handed to the executor,
// before any submission outcome is known.
var DealsAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deals_accepted_total",
		Help:      "Total deals accepted by the profit/age gate and handed to the executor",
	},
)

// DealsExecutedTotal counts executor outcomes by result label:
// "done", "failed", or "rejected_cap".
var DealsExecutedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deals_executed_total",
		Help:      "Total deals submitted to the executor by outcome",
	},
	[]string{"result"},
)

// IngestQueueDepth is the current number of distinct-symbol depth messages
// waiting for an ingest worker.
var IngestQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ingest_queue_depth",
		Help:      "Number of pending depth updates in the ingest queue",
	},
)

// ComputeQueueDepth is the current number of cycles waiting for a compute
// worker.
var ComputeQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "compute_queue_depth",
		Help:      "Number of cycles currently queued for evaluation",
	},
)

// ExecutorState is 1 for the executor's current state and 0 for every
// other, one series per state label (idle, submitting, awaiting_fill,
// done, failed).
var ExecutorState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "executor_state",
		Help:      "Current executor state (1 for the active state, 0 otherwise)",
	},
	[]string{"state"},
)

var executorStates = []string{"idle", "submitting", "awaiting_fill", "done", "failed"}

// SetExecutorState marks state active and every other known state
// inactive, so a single gauge query always shows exactly one active
// series.
func SetExecutorState(state string) {
	for _, s := range executorStates {
		if s == state {
			ExecutorState.WithLabelValues(s).Set(1)
		} else {
			ExecutorState.WithLabelValues(s).Set(0)
		}
	}
}
