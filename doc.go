/*
Package opflow provides an in-process operation scheduling engine for Go
applications: priority- and dependency-ordered execution of discrete units of
work with bounded concurrency and cooperative cancellation.

Core components (pkg/):
  - operation: a unit of work with a monotonic state machine
    (Pending → Ready → Executing → Finished), priority, dependency set,
    write-once result/error, and completion callbacks
  - depgraph: incremental readiness tracking over operation dependencies
  - queue: the scheduler, dispatching ready operations highest-priority
    first (FIFO within a tier) onto bounded worker slots
  - schedule: deferred and recurring submission (one-shot, interval, cron)
  - metrics: Prometheus instrumentation for queues and schedulers

Example usage:

	import (
		"github.com/vnykmshr/opflow/pkg/operation"
		"github.com/vnykmshr/opflow/pkg/queue"
	)

	q := queue.New()
	defer q.Shutdown()

	op := operation.New(operation.WorkFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
		return compute(ctx), nil
	}))

	q.AddOperation(op)
	<-op.Done()
*/
package opflow
