/*
Package operation defines the unit of work scheduled by opflow queues.

An Operation wraps a caller-supplied work function with an explicit state
machine, a priority, a dependency set and completion notification. The
engine never interprets the work itself; it is an opaque collaborator
invoked through the Work contract.

State machine:

	Pending → Ready → Executing → Finished

States are monotonic and Finished is terminal. An operation becomes Ready
only once every dependency is Finished; a cancelled-and-finished dependency
still counts. An operation cancelled before dispatch jumps directly to
Finished without its work ever running.

Basic usage:

	op := operation.New(operation.WorkFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
		return fetch(ctx, url)
	}))

	op.OnFinished(func(op *operation.Operation) {
		log.Printf("done: %v, err=%v", op.Result(), op.Err())
	})

Dependencies:

	c := operation.New(combine)
	if err := c.AddDependency(a); err != nil {
		// rejected: cycle, or a already executing
	}
	c.AddDependency(b)

AddDependency fails with a *errors.ConstructionError if the edge would
close a cycle or if an operand has already started executing; the graph is
left unchanged. Dependencies must be wired before the operation is
submitted to a queue.

Asynchronous operations:

	op := operation.NewWithConfig(operation.Config{
		Work: operation.WorkFunc(func(ctx context.Context, op *operation.Operation) (interface{}, error) {
			go func() {
				data, err := download(ctx, url) // deferred work
				op.Finish(data, err)            // releases the worker slot
			}()
			return nil, nil // initiated; still Executing
		}),
		Asynchronous: true,
	})

The worker slot stays occupied until Finish is called, never until the
work function returns. An asynchronous operation that never calls Finish is
a liveness defect in the supplied work; the queue's OldestExecutingAge
instrumentation exists to diagnose such stalls.

Cancellation is cooperative: Cancel sets a flag, cancels the operation's
context and fires cancellation hooks, but never preempts running work.
Work that wants to honour cancellation observes ctx.Done() or IsCancelled.
*/
package operation
