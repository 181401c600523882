package operation

import (
	"sync"

	oferrors "github.com/vnykmshr/opflow/pkg/common/errors"
)

// wiringMu guards the dependency edges of all operations. Edge mutation is
// rare and cheap, and a single lock keeps the graph acyclic at all times:
// no interleaving of concurrent AddDependency calls can slip a cycle past
// the check.
var wiringMu sync.Mutex

// AddDependency registers dep as a dependency of op: op will not become
// Ready until dep is Finished. A dependency that finishes after being
// cancelled still satisfies the edge, so cancellation does not block
// dependents indefinitely.
//
// It fails with a ConstructionError if the edge would create a cycle, if
// dep has already started executing, or if op has already been submitted to
// a queue (the dependency set freezes at submission). The graph is left
// unchanged on failure.
func (op *Operation) AddDependency(dep *Operation) error {
	if dep == nil {
		return oferrors.NewConstructionError("operation", "dependency", nil, "cannot be nil")
	}
	if dep == op {
		return oferrors.NewConstructionError("operation", "dependency", dep.id, "operation cannot depend on itself").
			WithCause(oferrors.ErrCycle)
	}

	wiringMu.Lock()
	defer wiringMu.Unlock()

	if op.submitted.Load() {
		return oferrors.NewConstructionError("operation", "dependency", dep.id, "operation already submitted to a queue").
			WithCause(oferrors.ErrAlreadySubmitted).
			WithHint("wire dependencies before calling AddOperation")
	}
	if s := op.State(); s >= Executing {
		return oferrors.NewConstructionError("operation", "dependency", dep.id, "operation already started executing").
			WithCause(oferrors.ErrAlreadyStarted)
	}
	if s := dep.State(); s >= Executing {
		return oferrors.NewConstructionError("operation", "dependency", dep.id, "dependency already started executing").
			WithCause(oferrors.ErrAlreadyStarted)
	}
	if dependsOn(dep, op) {
		return oferrors.NewConstructionError("operation", "dependency", dep.id, "would create a cycle").
			WithCause(oferrors.ErrCycle)
	}

	if op.deps == nil {
		op.deps = make(map[string]*Operation)
	}
	op.deps[dep.id] = dep
	return nil
}

// Dependencies returns a snapshot of the operation's dependencies.
func (op *Operation) Dependencies() []*Operation {
	wiringMu.Lock()
	defer wiringMu.Unlock()

	deps := make([]*Operation, 0, len(op.deps))
	for _, dep := range op.deps {
		deps = append(deps, dep)
	}
	return deps
}

// DependenciesSatisfied reports whether every dependency has reached
// Finished. Zero-dependency operations are trivially satisfied.
func (op *Operation) DependenciesSatisfied() bool {
	wiringMu.Lock()
	defer wiringMu.Unlock()

	for _, dep := range op.deps {
		if dep.State() != Finished {
			return false
		}
	}
	return true
}

// dependsOn reports whether target is reachable from start by following
// dependency edges. Must be called with wiringMu held.
func dependsOn(start, target *Operation) bool {
	seen := make(map[string]bool)
	stack := []*Operation{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur.id] {
			continue
		}
		seen[cur.id] = true
		for _, dep := range cur.deps {
			stack = append(stack, dep)
		}
	}
	return false
}
