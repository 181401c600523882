package queue

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	oferrors "github.com/vnykmshr/opflow/pkg/common/errors"
	"github.com/vnykmshr/opflow/pkg/depgraph"
	"github.com/vnykmshr/opflow/pkg/operation"
)

// Unbounded disables the concurrency limit: every ready operation is
// dispatched immediately.
const Unbounded = -1

// Queue schedules operations: it orders them by priority and dependency
// readiness, bounds how many execute concurrently, and tracks slot
// occupancy by each operation's completion signal.
type Queue interface {
	// AddOperation submits an operation for execution. The operation is
	// owned by this queue until Finished and must not be submitted again.
	AddOperation(op *operation.Operation) error

	// AddOperations submits a batch of operations. When waitUntilAllFinished
	// is true, the call blocks until every operation in the batch reaches
	// Finished; dispatch of unrelated operations is never blocked.
	AddOperations(ops []*operation.Operation, waitUntilAllFinished bool) error

	// AddFunc wraps a bare work function into an anonymous synchronous
	// operation with Normal priority and submits it.
	AddFunc(fn func(ctx context.Context) error) (*operation.Operation, error)

	// SetSuspended toggles dispatch. While suspended, no new operations are
	// dispatched; already-executing operations continue unaffected.
	SetSuspended(suspended bool)

	// IsSuspended reports whether dispatch is suspended.
	IsSuspended() bool

	// SetMaxConcurrent changes the concurrency limit for future dispatch
	// decisions. Lowering it below the current number of executing
	// operations does not preempt running work.
	SetMaxConcurrent(n int) error

	// MaxConcurrent returns the current concurrency limit (Unbounded for
	// no limit).
	MaxConcurrent() int

	// ExecutingCount returns the number of operations currently executing.
	ExecutingCount() int

	// ReadyCount returns the number of operations ready for dispatch.
	ReadyCount() int

	// PendingCount returns the number of operations waiting on unfinished
	// dependencies.
	PendingCount() int

	// OldestExecutingAge returns how long the longest-executing operation
	// has been running, or zero when nothing is executing. A steadily
	// growing age is the symptom of an asynchronous operation that never
	// signals completion.
	OldestExecutingAge() time.Duration

	// Shutdown stops dispatch and rejects new submissions. The returned
	// channel closes once every executing operation has finished; pending
	// and ready operations are left undispatched.
	Shutdown() <-chan struct{}
}

// Config holds configuration options for creating a queue.
type Config struct {
	// MaxConcurrent bounds how many operations execute at once. Use
	// Unbounded for no limit. Zero selects the host default,
	// runtime.GOMAXPROCS(0).
	MaxConcurrent int

	// Suspended starts the queue with dispatch suspended.
	Suspended bool

	// OnDispatch is called as an operation transitions Ready → Executing,
	// before its work runs.
	OnDispatch func(op *operation.Operation)

	// OnOperationFinished is called after an operation owned by this queue
	// reaches Finished, whether it executed, failed, or was cancelled
	// before dispatch.
	OnOperationFinished func(op *operation.Operation)
}

// entry is a ready-heap element. seq is assigned at submission and breaks
// priority ties first-in, first-dispatched.
type entry struct {
	op  *operation.Operation
	seq uint64
}

// readyHeap orders ready operations highest priority first, FIFO within a
// priority tier.
type readyHeap []*entry

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	if h[i].op.Priority() != h[j].op.Priority() {
		return h[i].op.Priority() > h[j].op.Priority()
	}
	return h[i].seq < h[j].seq
}

func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x interface{}) {
	*h = append(*h, x.(*entry))
}

func (h *readyHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// opQueue implements the Queue interface.
type opQueue struct {
	cfg Config

	mu         sync.Mutex
	ready      readyHeap
	pending    map[string]*operation.Operation
	executing  map[string]time.Time
	seqs       map[string]uint64
	nextSeq    uint64
	suspended  bool
	isShutdown bool

	graph *depgraph.Graph
	slots *slotGate

	active       sync.WaitGroup
	shutdownDone chan struct{}
	shutdownOnce sync.Once
}

// New creates a queue with default configuration: concurrency limited to
// runtime.GOMAXPROCS(0), dispatch enabled.
func New() Queue {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a queue with the specified configuration.
// It panics on an invalid configuration; use NewWithConfigSafe to get an
// error instead.
func NewWithConfig(cfg Config) Queue {
	q, err := NewWithConfigSafe(cfg)
	if err != nil {
		panic(err)
	}
	return q
}

// NewWithConfigSafe creates a queue with the specified configuration,
// validating it instead of panicking.
func NewWithConfigSafe(cfg Config) (Queue, error) {
	if cfg.MaxConcurrent < Unbounded {
		return nil, oferrors.NewConstructionError("queue", "maxConcurrent", cfg.MaxConcurrent, "must be positive, Unbounded, or 0 for the host default").
			WithHint("use queue.Unbounded to disable the limit")
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent == 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}

	return &opQueue{
		cfg:          cfg,
		pending:      make(map[string]*operation.Operation),
		executing:    make(map[string]time.Time),
		seqs:         make(map[string]uint64),
		suspended:    cfg.Suspended,
		graph:        depgraph.New(),
		slots:        newSlotGate(maxConcurrent),
		shutdownDone: make(chan struct{}),
	}, nil
}

func (q *opQueue) AddOperation(op *operation.Operation) error {
	if op == nil {
		return fmt.Errorf("operation cannot be nil")
	}

	q.mu.Lock()
	if q.isShutdown {
		q.mu.Unlock()
		return fmt.Errorf("cannot add operation: %w", oferrors.ErrShutdown)
	}
	q.mu.Unlock()

	if err := op.MarkSubmitted(); err != nil {
		return err
	}

	q.mu.Lock()
	seq := q.nextSeq
	q.nextSeq++
	q.seqs[op.ID()] = seq

	ready, watch := q.graph.Register(op)
	if ready && op.MarkReady() {
		heap.Push(&q.ready, &entry{op: op, seq: seq})
	} else {
		q.pending[op.ID()] = op
	}
	q.mu.Unlock()

	// Slot release and readiness fan-out ride the completion callback, so
	// they track the operation's actual finish signal.
	op.OnFinished(q.operationFinished)

	// Dependencies not owned by this queue report their finish through
	// their own completion callbacks. Fires immediately if already finished.
	for _, dep := range watch {
		dep := dep
		dep.OnFinished(func(*operation.Operation) {
			q.dependencyFinished(dep)
		})
	}

	// Cancellation before dispatch finishes the operation without its work
	// ever running.
	op.OnCancel(func() { q.cancelBeforeDispatch(op) })

	q.dispatch()
	return nil
}

func (q *opQueue) AddOperations(ops []*operation.Operation, waitUntilAllFinished bool) error {
	for _, op := range ops {
		if op == nil {
			return fmt.Errorf("operation cannot be nil")
		}
	}

	for _, op := range ops {
		if err := q.AddOperation(op); err != nil {
			return err
		}
	}

	if waitUntilAllFinished {
		for _, op := range ops {
			<-op.Done()
		}
	}
	return nil
}

func (q *opQueue) AddFunc(fn func(ctx context.Context) error) (*operation.Operation, error) {
	if fn == nil {
		return nil, fmt.Errorf("work function cannot be nil")
	}

	op := operation.New(operation.WorkFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
		return nil, fn(ctx)
	}))
	if err := q.AddOperation(op); err != nil {
		return nil, err
	}
	return op, nil
}

// dispatch fills free worker slots with ready operations, highest priority
// first, FIFO within a tier. It is invoked on every event that can unblock
// dispatch: submission, an operation finishing, resume, and concurrency
// limit changes.
func (q *opQueue) dispatch() {
	var launch []*operation.Operation
	var cancelled []*operation.Operation

	q.mu.Lock()
	for !q.suspended && !q.isShutdown && q.ready.Len() > 0 {
		top := q.ready[0]
		if top.op.State() != operation.Ready {
			// Finished out of band (pre-dispatch cancellation); drop the
			// stale heap entry.
			heap.Pop(&q.ready)
			continue
		}
		if top.op.IsCancelled() {
			heap.Pop(&q.ready)
			cancelled = append(cancelled, top.op)
			continue
		}
		if !q.slots.tryAcquire() {
			break
		}
		heap.Pop(&q.ready)
		if !top.op.MarkExecuting() {
			q.slots.release()
			continue
		}
		q.executing[top.op.ID()] = time.Now()
		q.active.Add(1)
		launch = append(launch, top.op)
	}
	onDispatch := q.cfg.OnDispatch
	q.mu.Unlock()

	for _, op := range cancelled {
		op.Finish(nil, nil)
	}
	for _, op := range launch {
		if onDispatch != nil {
			onDispatch(op)
		}
		go op.Execute()
	}
}

// operationFinished is registered as a completion callback on every
// operation owned by this queue. It releases the worker slot, fans
// readiness out to dependents and refills freed slots.
func (q *opQueue) operationFinished(op *operation.Operation) {
	q.mu.Lock()
	id := op.ID()
	if _, ok := q.executing[id]; ok {
		delete(q.executing, id)
		q.slots.release()
		q.active.Done()
	}
	delete(q.pending, id)
	delete(q.seqs, id)
	q.promoteLocked(q.graph.Finished(op))
	hook := q.cfg.OnOperationFinished
	q.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	q.dispatch()
}

// dependencyFinished handles completion of a dependency that is not owned
// by this queue.
func (q *opQueue) dependencyFinished(dep *operation.Operation) {
	q.mu.Lock()
	q.promoteLocked(q.graph.Finished(dep))
	q.mu.Unlock()
	q.dispatch()
}

// promoteLocked moves now-satisfied operations from pending to the ready
// heap. Caller must hold q.mu.
func (q *opQueue) promoteLocked(ops []*operation.Operation) {
	for _, op := range ops {
		if op.MarkReady() {
			delete(q.pending, op.ID())
			heap.Push(&q.ready, &entry{op: op, seq: q.seqs[op.ID()]})
		}
	}
}

// cancelBeforeDispatch finishes an operation that was cancelled while still
// Pending or Ready, without running its work. Cancellation of an executing
// operation stays cooperative: completion remains the work's responsibility.
func (q *opQueue) cancelBeforeDispatch(op *operation.Operation) {
	q.mu.Lock()
	s := op.State()
	if s == operation.Executing || s == operation.Finished {
		q.mu.Unlock()
		return
	}
	delete(q.pending, op.ID())
	q.mu.Unlock()

	op.Finish(nil, nil)
}

func (q *opQueue) SetSuspended(suspended bool) {
	q.mu.Lock()
	q.suspended = suspended
	q.mu.Unlock()

	if !suspended {
		q.dispatch()
	}
}

func (q *opQueue) IsSuspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

func (q *opQueue) SetMaxConcurrent(n int) error {
	if n < Unbounded {
		return oferrors.NewConstructionError("queue", "maxConcurrent", n, "must be positive, Unbounded, or 0 for the host default")
	}
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
	}

	q.slots.setCapacity(n)
	q.dispatch()
	return nil
}

func (q *opQueue) MaxConcurrent() int {
	return q.slots.limit()
}

func (q *opQueue) ExecutingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.executing)
}

func (q *opQueue) ReadyCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, e := range q.ready {
		if e.op.State() == operation.Ready {
			n++
		}
	}
	return n
}

func (q *opQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *opQueue) OldestExecutingAge() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	var oldest time.Time
	for _, started := range q.executing {
		if oldest.IsZero() || started.Before(oldest) {
			oldest = started
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return time.Since(oldest)
}

func (q *opQueue) Shutdown() <-chan struct{} {
	q.shutdownOnce.Do(func() {
		q.mu.Lock()
		q.isShutdown = true
		q.mu.Unlock()

		go func() {
			q.active.Wait()
			close(q.shutdownDone)
		}()
	})
	return q.shutdownDone
}
