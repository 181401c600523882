/*
Package queue provides a priority operation queue with dependency-aware
scheduling and bounded concurrency.

Operations submitted to a queue are dispatched highest priority first,
first-in-first-out within a priority tier. An operation with unfinished
dependencies stays pending until all of them finish; readiness is
recomputed incrementally as dependencies complete, never by polling.

The number of concurrently executing operations is bounded by
MaxConcurrent (runtime.GOMAXPROCS(0) by default, Unbounded for no limit).
A worker slot is held from dispatch until the operation signals
completion. For synchronous operations that is when the work function
returns; for asynchronous operations the slot is held until Finish is
called, even long after the work function has returned.

	q := queue.NewWithConfig(queue.Config{MaxConcurrent: 4})

	op := operation.NewWithConfig(operation.Config{
		Work:     downloadWork,
		Priority: operation.High,
	})
	if err := q.AddOperation(op); err != nil {
		log.Fatal(err)
	}
	<-op.Done()

Queues can be suspended and resumed, resized at runtime, and shut down
gracefully. Use NewWithMetrics or NewWithConfigAndMetrics for a queue
that exports Prometheus metrics.
*/
package queue
