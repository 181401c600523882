// Package metrics provides Prometheus instrumentation for opflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for opflow components.
type Registry struct {
	// Queue Metrics
	OperationsSubmitted *prometheus.CounterVec
	OperationsFinished  *prometheus.CounterVec
	OperationsCancelled *prometheus.CounterVec
	OperationsFailed    *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	QueueExecuting      *prometheus.GaugeVec
	QueueReady          *prometheus.GaugeVec
	QueuePending        *prometheus.GaugeVec
	QueueMaxConcurrent  *prometheus.GaugeVec
	OldestExecutingAge  *prometheus.GaugeVec

	// Schedule Metrics
	EntriesScheduled *prometheus.CounterVec
	EntriesSubmitted *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by opflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Queue Metrics
		OperationsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "operations_submitted_total",
				Help:      "Total number of operations submitted to the queue",
			},
			[]string{"queue_name"},
		),

		OperationsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "operations_finished_total",
				Help:      "Total number of operations that reached the Finished state",
			},
			[]string{"queue_name"},
		),

		OperationsCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "operations_cancelled_total",
				Help:      "Total number of operations finished with cancellation requested",
			},
			[]string{"queue_name"},
		),

		OperationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "operations_failed_total",
				Help:      "Total number of operations finished with an error",
			},
			[]string{"queue_name"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "operation_duration_seconds",
				Help:      "Time from dispatch until the operation finished",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue_name"},
		),

		QueueExecuting: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "executing_operations",
				Help:      "Number of operations currently executing",
			},
			[]string{"queue_name"},
		),

		QueueReady: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "ready_operations",
				Help:      "Number of operations ready for dispatch",
			},
			[]string{"queue_name"},
		),

		QueuePending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "pending_operations",
				Help:      "Number of operations waiting on unfinished dependencies",
			},
			[]string{"queue_name"},
		),

		QueueMaxConcurrent: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "max_concurrent_operations",
				Help:      "Configured concurrency limit (-1 when unbounded)",
			},
			[]string{"queue_name"},
		),

		OldestExecutingAge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "opflow",
				Subsystem: "queue",
				Name:      "oldest_executing_age_seconds",
				Help:      "Age of the longest-executing operation, for diagnosing stalls",
			},
			[]string{"queue_name"},
		),

		// Schedule Metrics
		EntriesScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "schedule",
				Name:      "entries_scheduled_total",
				Help:      "Total number of entries registered with the scheduler",
			},
			[]string{"scheduler_name"},
		),

		EntriesSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "opflow",
				Subsystem: "schedule",
				Name:      "entries_submitted_total",
				Help:      "Total number of operations submitted to a queue by the scheduler",
			},
			[]string{"scheduler_name"},
		),
	}
}
