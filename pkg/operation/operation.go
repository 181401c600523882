package operation

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	oferrors "github.com/vnykmshr/opflow/pkg/common/errors"
	"github.com/vnykmshr/opflow/pkg/common/validation"
)

// Work is the unit of work an operation executes. Implementations receive
// the operation's context, which is cancelled when cancellation is
// requested; cancellation is cooperative and never forces termination.
//
// Synchronous operations finish when Run returns: the returned value and
// error populate the operation's result and error slots.
//
// Asynchronous operations use Run to initiate work and return quickly; the
// operation stays Executing (and its worker slot stays occupied) until
// Finish is called explicitly, typically from a callback. A non-nil error
// returned by an asynchronous Run finishes the operation immediately, since
// the work never started.
type Work interface {
	Run(ctx context.Context, op *Operation) (interface{}, error)
}

// WorkFunc is a function type that implements the Work interface.
type WorkFunc func(ctx context.Context, op *Operation) (interface{}, error)

// Run implements the Work interface for WorkFunc.
func (f WorkFunc) Run(ctx context.Context, op *Operation) (interface{}, error) {
	return f(ctx, op)
}

// Callback is a completion callback. Callbacks fire exactly once, in
// registration order, strictly after the operation reaches Finished.
type Callback func(*Operation)

// Config holds configuration options for creating an operation.
type Config struct {
	// Work is the unit of work the operation executes. Must not be nil.
	Work Work

	// Priority orders dispatch among simultaneously ready operations.
	// Defaults to Normal.
	Priority Priority

	// Asynchronous marks the operation as signalling completion explicitly
	// via Finish instead of by returning from Run.
	Asynchronous bool

	// OnCancel is invoked once, at the moment cancellation is requested,
	// giving the work a chance to abort underlying activity.
	OnCancel func()

	// ID overrides the generated unique identifier.
	ID string
}

// Operation is a unit of work with its own state machine, priority and
// dependency set. An operation is created by the caller, submitted to
// exactly one queue, and owned by that queue until Finished; it is never
// resubmitted or reset.
type Operation struct {
	id       string
	priority Priority
	async    bool
	work     Work

	state     atomic.Int32
	cancelled atomic.Bool
	submitted atomic.Bool

	ctx       context.Context
	cancelCtx context.CancelFunc

	mu          sync.Mutex
	result      interface{}
	err         error
	callbacks   []Callback
	cancelHooks []func()
	readyAt     time.Time
	startedAt   time.Time
	finishedAt  time.Time

	done chan struct{}

	// deps is guarded by the package wiring lock and frozen once the
	// operation is submitted.
	deps map[string]*Operation
}

// New creates a synchronous operation with Normal priority.
func New(work Work) *Operation {
	return NewWithConfig(Config{Work: work})
}

// NewFunc creates a synchronous operation with Normal priority from a bare
// work function.
func NewFunc(fn WorkFunc) *Operation {
	return NewWithConfig(Config{Work: fn})
}

// NewWithConfig creates an operation with the specified configuration.
// It panics if cfg.Work is nil or cfg.Priority is out of range; use
// NewWithConfigSafe to get an error instead.
func NewWithConfig(cfg Config) *Operation {
	op, err := NewWithConfigSafe(cfg)
	if err != nil {
		panic(err)
	}
	return op
}

// NewWithConfigSafe creates an operation with the specified configuration,
// validating it instead of panicking.
func NewWithConfigSafe(cfg Config) (*Operation, error) {
	if cfg.Work == nil {
		return nil, validation.ValidateNotNil("operation", "work", nil)
	}
	if !cfg.Priority.Valid() {
		return nil, oferrors.NewConstructionError("operation", "priority", cfg.Priority, "out of range").
			WithHint("use one of VeryLow, Low, Normal, High, VeryHigh")
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())

	op := &Operation{
		id:        id,
		priority:  cfg.Priority,
		async:     cfg.Asynchronous,
		work:      cfg.Work,
		ctx:       ctx,
		cancelCtx: cancel,
		done:      make(chan struct{}),
	}
	if cfg.OnCancel != nil {
		op.cancelHooks = append(op.cancelHooks, cfg.OnCancel)
	}
	return op, nil
}

// ID returns the operation's unique identifier.
func (op *Operation) ID() string { return op.id }

// Priority returns the operation's priority, fixed at creation.
func (op *Operation) Priority() Priority { return op.priority }

// IsAsynchronous reports whether the operation signals completion
// explicitly via Finish.
func (op *Operation) IsAsynchronous() bool { return op.async }

// State returns the operation's current state.
func (op *Operation) State() State { return State(op.state.Load()) }

// IsCancelled reports whether cancellation has been requested. The flag is
// independent of state: a cancelled operation may still be executing.
func (op *Operation) IsCancelled() bool { return op.cancelled.Load() }

// Context returns the operation's context. It is cancelled when Cancel is
// called, or when the operation finishes.
func (op *Operation) Context() context.Context { return op.ctx }

// Done returns a channel that closes when the operation reaches Finished.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Result returns the operation's result. It is nil until the operation
// reaches Finished, after which it is immutable.
func (op *Operation) Result() interface{} {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.State() != Finished {
		return nil
	}
	return op.result
}

// Err returns the error captured by the operation's work, or nil. It is nil
// until the operation reaches Finished. An operation cancelled before
// dispatch finishes with a nil error and IsCancelled() == true; callers
// distinguish "cancelled" from "succeeded" via the flag, not the error.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.State() != Finished {
		return nil
	}
	return op.err
}

// ReadyAt returns when the operation became Ready, or the zero time.
func (op *Operation) ReadyAt() time.Time {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.readyAt
}

// StartedAt returns when the operation was dispatched, or the zero time.
func (op *Operation) StartedAt() time.Time {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.startedAt
}

// FinishedAt returns when the operation finished, or the zero time.
func (op *Operation) FinishedAt() time.Time {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.finishedAt
}

// ExecutionDuration returns the time between dispatch and finish, or zero
// if the operation has not finished executing (or never executed).
func (op *Operation) ExecutionDuration() time.Duration {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.startedAt.IsZero() || op.finishedAt.IsZero() {
		return 0
	}
	return op.finishedAt.Sub(op.startedAt)
}

// Wait blocks until the operation finishes or the context is done.
func (op *Operation) Wait(ctx context.Context) error {
	select {
	case <-op.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnFinished registers a completion callback. Callbacks fire exactly once,
// in registration order, strictly after the transition to Finished. If the
// operation has already finished, the callback fires immediately on the
// calling goroutine.
func (op *Operation) OnFinished(cb Callback) {
	if cb == nil {
		return
	}
	op.mu.Lock()
	if op.State() == Finished {
		op.mu.Unlock()
		cb(op)
		return
	}
	op.callbacks = append(op.callbacks, cb)
	op.mu.Unlock()
}

// OnCancel registers an additional cancellation hook. Hooks fire once, at
// the moment cancellation is requested. If cancellation has already been
// requested, the hook fires immediately on the calling goroutine.
func (op *Operation) OnCancel(fn func()) {
	if fn == nil {
		return
	}
	op.mu.Lock()
	if op.cancelled.Load() {
		op.mu.Unlock()
		fn()
		return
	}
	op.cancelHooks = append(op.cancelHooks, fn)
	op.mu.Unlock()
}

// Cancel requests cooperative cancellation. It never blocks, never forces a
// running work function to stop, and is idempotent: repeated calls, or calls
// after Finished, are no-ops. Cancelling sets the cancellation flag, cancels
// the operation's context and fires registered cancellation hooks; an
// operation that has not been dispatched yet is finished by its queue
// without its work ever running.
func (op *Operation) Cancel() {
	if !op.cancelled.CompareAndSwap(false, true) {
		return
	}
	op.cancelCtx()

	op.mu.Lock()
	hooks := op.cancelHooks
	op.cancelHooks = nil
	op.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Finish transitions the operation to Finished, populating the write-once
// result and error slots and firing completion callbacks in registration
// order on the calling goroutine. The first call wins; later calls are
// no-ops returning false.
//
// Synchronous operations finish automatically when their work returns;
// asynchronous operations must call Finish explicitly once their deferred
// work completes. An asynchronous operation that never calls Finish holds
// its worker slot forever; that is a defect in the supplied work, which
// the engine cannot reliably detect. Use the queue's OldestExecutingAge
// instrumentation to diagnose stalls.
func (op *Operation) Finish(result interface{}, err error) bool {
	op.mu.Lock()
	if op.State() == Finished {
		op.mu.Unlock()
		return false
	}
	op.result = result
	op.err = err
	op.finishedAt = time.Now()
	op.state.Store(int32(Finished))
	cbs := op.callbacks
	op.callbacks = nil
	close(op.done)
	op.mu.Unlock()

	op.cancelCtx()

	for _, cb := range cbs {
		cb(op)
	}
	return true
}

// MarkSubmitted claims the operation for a queue. It fails with a
// ConstructionError wrapping ErrAlreadySubmitted if the operation already
// belongs to a queue. Submission freezes the dependency set.
func (op *Operation) MarkSubmitted() error {
	wiringMu.Lock()
	defer wiringMu.Unlock()
	if !op.submitted.CompareAndSwap(false, true) {
		return oferrors.NewConstructionError("operation", "queue", op.id, "already submitted to a queue").
			WithCause(oferrors.ErrAlreadySubmitted)
	}
	return nil
}

// MarkReady transitions Pending → Ready. Returns false if the operation is
// not Pending. Intended for queue implementations.
func (op *Operation) MarkReady() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.State() != Pending {
		return false
	}
	op.state.Store(int32(Ready))
	op.readyAt = time.Now()
	return true
}

// MarkExecuting transitions Ready → Executing. Returns false if the
// operation is not Ready (e.g. it was finished by a pre-dispatch
// cancellation). Intended for queue implementations.
func (op *Operation) MarkExecuting() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.State() != Ready {
		return false
	}
	op.state.Store(int32(Executing))
	op.startedAt = time.Now()
	return true
}

// Execute runs the operation's work on the calling goroutine. A panic in
// the work is recovered and captured into the error slot; the operation
// still reaches Finished. Intended for queue implementations; the operation
// must be Executing.
func (op *Operation) Execute() {
	defer func() {
		if r := recover(); r != nil {
			op.Finish(nil, fmt.Errorf("operation panicked: %v\nStack trace:\n%s", r, debug.Stack()))
		}
	}()

	result, err := op.work.Run(op.ctx, op)

	if op.async {
		// The work only initiated; completion arrives via Finish. A non-nil
		// error means the work never started, so finish now.
		if err != nil {
			op.Finish(nil, err)
		}
		return
	}

	op.Finish(result, err)
}
