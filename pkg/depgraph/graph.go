package depgraph

import (
	"sync"

	"github.com/vnykmshr/opflow/pkg/operation"
)

// Graph tracks readiness of submitted operations over their dependency
// edges. Edges themselves are wired (and cycle-checked) on the operations
// before submission; the graph's job is incremental recomputation: whenever
// a dependency finishes, every operation waiting on it is re-checked and
// reported ready once all of its dependencies are finished.
//
// A Graph is safe for concurrent use.
type Graph struct {
	mu sync.Mutex

	// waiters maps a dependency's ID to the operations waiting on it.
	waiters map[string][]*operation.Operation

	// registered tracks operations registered with this graph, so Register
	// can tell which dependencies need an external finish watch.
	registered map[string]bool
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		waiters:    make(map[string][]*operation.Operation),
		registered: make(map[string]bool),
	}
}

// Register adds op to the graph and computes its initial readiness.
//
// It returns ready == true when every dependency of op is already Finished
// (operations with zero dependencies are immediately ready). The watch
// slice lists dependencies that are neither finished nor registered with
// this graph: the caller must arrange for Finished to be invoked when each
// of them completes, typically via their OnFinished callback.
func (g *Graph) Register(op *operation.Operation) (ready bool, watch []*operation.Operation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.registered[op.ID()] = true

	unfinished := 0
	for _, dep := range op.Dependencies() {
		if dep.State() == operation.Finished {
			continue
		}
		unfinished++

		id := dep.ID()
		_, watched := g.waiters[id]
		g.waiters[id] = append(g.waiters[id], op)
		if !watched && !g.registered[id] {
			watch = append(watch, dep)
		}
	}

	return unfinished == 0, watch
}

// Finished records that op reached the Finished state and returns the
// operations that became ready as a result. Calling it again for the same
// operation is a no-op.
func (g *Graph) Finished(op *operation.Operation) []*operation.Operation {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := op.ID()
	delete(g.registered, id)

	waiters := g.waiters[id]
	delete(g.waiters, id)

	var ready []*operation.Operation
	for _, w := range waiters {
		if w.DependenciesSatisfied() {
			ready = append(ready, w)
		}
	}
	return ready
}

// WaitingCount returns the number of dependency edges still being waited
// on. Useful for introspection and tests.
func (g *Graph) WaitingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, w := range g.waiters {
		n += len(w)
	}
	return n
}
