package queue

import (
	"sync"
)

// slotGate is the queue's slot-occupancy counter: it bounds how many
// operations may be in the Executing state at once. A slot is acquired at
// dispatch and released only when the operation's state machine signals
// completion. For asynchronous operations that is the explicit Finish
// call, never the work function returning.
type slotGate struct {
	mu       sync.Mutex
	capacity int // Unbounded for no limit
	inUse    int
}

func newSlotGate(capacity int) *slotGate {
	return &slotGate{capacity: capacity}
}

// tryAcquire claims one slot without blocking.
func (g *slotGate) tryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.capacity != Unbounded && g.inUse >= g.capacity {
		return false
	}
	g.inUse++
	return true
}

// release returns one slot to the gate.
func (g *slotGate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inUse <= 0 {
		panic("queue: released more slots than acquired")
	}
	g.inUse--
}

// setCapacity changes the concurrency limit. Lowering it below the number
// of slots in use never preempts running operations; it only throttles new
// dispatch until occupancy drops.
func (g *slotGate) setCapacity(capacity int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.capacity = capacity
}

// limit returns the configured capacity.
func (g *slotGate) limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capacity
}

// occupied returns the number of slots currently in use.
func (g *slotGate) occupied() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inUse
}
