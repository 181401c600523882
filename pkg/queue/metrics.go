package queue

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/opflow/pkg/metrics"
	"github.com/vnykmshr/opflow/pkg/operation"
)

// MetricsQueue wraps a Queue with Prometheus metrics collection.
type MetricsQueue struct {
	queue    Queue
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a queue with default configuration and metrics
// enabled on a dedicated Prometheus registry.
func NewWithMetrics(name string) Queue {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{}, name, config)
}

// NewWithConfigAndMetrics creates a queue with custom config and metrics.
func NewWithConfigAndMetrics(cfg Config, name string, metricsConfig metrics.Config) Queue {
	baseQueue := NewWithConfig(cfg)

	if !metricsConfig.Enabled {
		return baseQueue
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	mq := &MetricsQueue{
		queue:    baseQueue,
		name:     name,
		registry: registry,
		enabled:  true,
	}

	mq.updateMetrics()

	return mq
}

// updateMetrics refreshes the current state gauges.
func (mq *MetricsQueue) updateMetrics() {
	if !mq.enabled {
		return
	}

	mq.registry.QueueExecuting.WithLabelValues(mq.name).Set(float64(mq.queue.ExecutingCount()))
	mq.registry.QueueReady.WithLabelValues(mq.name).Set(float64(mq.queue.ReadyCount()))
	mq.registry.QueuePending.WithLabelValues(mq.name).Set(float64(mq.queue.PendingCount()))
	mq.registry.QueueMaxConcurrent.WithLabelValues(mq.name).Set(float64(mq.queue.MaxConcurrent()))
	mq.registry.OldestExecutingAge.WithLabelValues(mq.name).Set(mq.queue.OldestExecutingAge().Seconds())
}

// observe records completion metrics for op once it finishes. OnFinished
// fires immediately for an already-finished operation, so registering after
// submission still records exactly once.
func (mq *MetricsQueue) observe(op *operation.Operation) {
	op.OnFinished(func(op *operation.Operation) {
		if !mq.enabled {
			return
		}

		mq.registry.OperationsFinished.WithLabelValues(mq.name).Inc()
		if op.IsCancelled() {
			mq.registry.OperationsCancelled.WithLabelValues(mq.name).Inc()
		}
		if op.Err() != nil {
			mq.registry.OperationsFailed.WithLabelValues(mq.name).Inc()
		}
		if d := op.ExecutionDuration(); d > 0 {
			mq.registry.OperationDuration.WithLabelValues(mq.name).Observe(d.Seconds())
		}

		mq.updateMetrics()
	})
}

// AddOperation submits an operation and records submission metrics.
func (mq *MetricsQueue) AddOperation(op *operation.Operation) error {
	err := mq.queue.AddOperation(op)

	if err == nil {
		mq.observe(op)
		if mq.enabled {
			mq.registry.OperationsSubmitted.WithLabelValues(mq.name).Inc()
		}
	}
	mq.updateMetrics()

	return err
}

// AddOperations submits a batch of operations with metrics.
func (mq *MetricsQueue) AddOperations(ops []*operation.Operation, waitUntilAllFinished bool) error {
	err := mq.queue.AddOperations(ops, waitUntilAllFinished)

	if err == nil {
		for _, op := range ops {
			mq.observe(op)
		}
		if mq.enabled {
			mq.registry.OperationsSubmitted.WithLabelValues(mq.name).Add(float64(len(ops)))
		}
	}
	mq.updateMetrics()

	return err
}

// AddFunc wraps a bare work function into an anonymous operation with metrics.
func (mq *MetricsQueue) AddFunc(fn func(ctx context.Context) error) (*operation.Operation, error) {
	op, err := mq.queue.AddFunc(fn)
	if err != nil {
		return nil, err
	}

	mq.observe(op)
	if mq.enabled {
		mq.registry.OperationsSubmitted.WithLabelValues(mq.name).Inc()
	}
	mq.updateMetrics()

	return op, nil
}

// SetSuspended toggles dispatch on the underlying queue.
func (mq *MetricsQueue) SetSuspended(suspended bool) {
	mq.queue.SetSuspended(suspended)
	mq.updateMetrics()
}

// IsSuspended reports whether dispatch is suspended.
func (mq *MetricsQueue) IsSuspended() bool {
	return mq.queue.IsSuspended()
}

// SetMaxConcurrent changes the concurrency limit.
func (mq *MetricsQueue) SetMaxConcurrent(n int) error {
	err := mq.queue.SetMaxConcurrent(n)
	mq.updateMetrics()
	return err
}

// MaxConcurrent returns the current concurrency limit.
func (mq *MetricsQueue) MaxConcurrent() int {
	return mq.queue.MaxConcurrent()
}

// ExecutingCount returns the number of operations currently executing.
func (mq *MetricsQueue) ExecutingCount() int {
	return mq.queue.ExecutingCount()
}

// ReadyCount returns the number of operations ready for dispatch.
func (mq *MetricsQueue) ReadyCount() int {
	return mq.queue.ReadyCount()
}

// PendingCount returns the number of operations waiting on dependencies.
func (mq *MetricsQueue) PendingCount() int {
	return mq.queue.PendingCount()
}

// OldestExecutingAge returns the age of the longest-executing operation.
func (mq *MetricsQueue) OldestExecutingAge() time.Duration {
	age := mq.queue.OldestExecutingAge()

	if mq.enabled {
		mq.registry.OldestExecutingAge.WithLabelValues(mq.name).Set(age.Seconds())
	}

	return age
}

// Shutdown initiates graceful shutdown of the underlying queue.
func (mq *MetricsQueue) Shutdown() <-chan struct{} {
	return mq.queue.Shutdown()
}

// EnableMetrics enables metrics collection.
func (mq *MetricsQueue) EnableMetrics(config metrics.Config) error {
	mq.enabled = config.Enabled

	if config.Registry != nil {
		mq.registry = metrics.NewRegistry(config.Registry)
	}

	if mq.enabled {
		mq.updateMetrics()
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (mq *MetricsQueue) DisableMetrics() {
	mq.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mq *MetricsQueue) MetricsEnabled() bool {
	return mq.enabled
}
