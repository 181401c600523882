package operation

import (
	"errors"
	"testing"

	"github.com/vnykmshr/opflow/internal/testutil"
	oferrors "github.com/vnykmshr/opflow/pkg/common/errors"
)

func TestAddDependency(t *testing.T) {
	a := New(noopWork())
	b := New(noopWork())

	testutil.AssertNoError(t, b.AddDependency(a))

	deps := b.Dependencies()
	testutil.AssertEqual(t, len(deps), 1)
	testutil.AssertEqual(t, deps[0], a)
}

func TestAddDependencyNil(t *testing.T) {
	op := New(noopWork())
	testutil.AssertError(t, op.AddDependency(nil))
}

func TestAddDependencySelfCycle(t *testing.T) {
	op := New(noopWork())

	err := op.AddDependency(op)
	testutil.AssertError(t, err)
	if !errors.Is(err, oferrors.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	a := New(noopWork())
	b := New(noopWork())
	c := New(noopWork())

	testutil.AssertNoError(t, b.AddDependency(a))
	testutil.AssertNoError(t, c.AddDependency(b))

	// a → c would close a ← b ← c.
	err := a.AddDependency(c)
	testutil.AssertError(t, err)
	if !errors.Is(err, oferrors.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if !oferrors.IsConstructionError(err) {
		t.Error("expected a ConstructionError")
	}

	// The graph must be unchanged by the rejected edge.
	testutil.AssertEqual(t, len(a.Dependencies()), 0)
}

func TestAddDependencyRejectsStartedDependency(t *testing.T) {
	dep := New(noopWork())
	dep.MarkReady()
	dep.MarkExecuting()

	op := New(noopWork())
	err := op.AddDependency(dep)
	testutil.AssertError(t, err)
	if !errors.Is(err, oferrors.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestAddDependencyRejectsFinishedDependency(t *testing.T) {
	dep := New(noopWork())
	dep.Finish(nil, nil)

	op := New(noopWork())
	err := op.AddDependency(dep)
	if !errors.Is(err, oferrors.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestAddDependencyRejectsAfterSubmission(t *testing.T) {
	op := New(noopWork())
	dep := New(noopWork())

	testutil.AssertNoError(t, op.MarkSubmitted())

	err := op.AddDependency(dep)
	testutil.AssertError(t, err)
	if !errors.Is(err, oferrors.ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestDependenciesSatisfied(t *testing.T) {
	a := New(noopWork())
	b := New(noopWork())
	c := New(noopWork())
	testutil.AssertNoError(t, c.AddDependency(a))
	testutil.AssertNoError(t, c.AddDependency(b))

	testutil.AssertEqual(t, c.DependenciesSatisfied(), false)

	a.Finish(nil, nil)
	testutil.AssertEqual(t, c.DependenciesSatisfied(), false)

	b.Finish(nil, nil)
	testutil.AssertEqual(t, c.DependenciesSatisfied(), true)
}

func TestCancelledFinishedDependencySatisfies(t *testing.T) {
	dep := New(noopWork())
	op := New(noopWork())
	testutil.AssertNoError(t, op.AddDependency(dep))

	dep.Cancel()
	testutil.AssertEqual(t, op.DependenciesSatisfied(), false)

	// A cancelled dependency that reaches Finished still satisfies the edge.
	dep.Finish(nil, nil)
	testutil.AssertEqual(t, op.DependenciesSatisfied(), true)
}

func TestZeroDependenciesTriviallySatisfied(t *testing.T) {
	op := New(noopWork())
	testutil.AssertEqual(t, op.DependenciesSatisfied(), true)
}

func TestAddDependencyDuplicateEdgeIsIdempotent(t *testing.T) {
	a := New(noopWork())
	b := New(noopWork())

	testutil.AssertNoError(t, b.AddDependency(a))
	testutil.AssertNoError(t, b.AddDependency(a))
	testutil.AssertEqual(t, len(b.Dependencies()), 1)
}
