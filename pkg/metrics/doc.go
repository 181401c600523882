// Package metrics provides Prometheus instrumentation for opflow components.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Operation queues (submitted, finished, cancelled, failed operations,
//     execution durations, executing/ready/pending gauges)
//   - Liveness diagnostics (age of the oldest executing operation, for
//     spotting asynchronous operations that never signal completion)
//   - Schedulers (entries registered, operations submitted)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	q := queue.NewWithMetrics("ingest")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//	q := queue.NewWithConfigAndMetrics(queue.Config{}, "ingest", config)
//
// # Available Metrics
//
//   - opflow_queue_operations_submitted_total
//   - opflow_queue_operations_finished_total
//   - opflow_queue_operations_cancelled_total
//   - opflow_queue_operations_failed_total
//   - opflow_queue_operation_duration_seconds
//   - opflow_queue_executing_operations
//   - opflow_queue_ready_operations
//   - opflow_queue_pending_operations
//   - opflow_queue_max_concurrent_operations
//   - opflow_queue_oldest_executing_age_seconds
//   - opflow_schedule_entries_scheduled_total
//   - opflow_schedule_entries_submitted_total
//
// Queue metrics carry a queue_name label, schedule metrics a scheduler_name
// label, so multiple instances can share one registry.
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when operations change state
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
