package queue

import (
	"testing"

	"github.com/vnykmshr/opflow/internal/testutil"
)

func TestSlotGateAcquireRelease(t *testing.T) {
	g := newSlotGate(2)

	testutil.AssertEqual(t, g.tryAcquire(), true)
	testutil.AssertEqual(t, g.tryAcquire(), true)
	testutil.AssertEqual(t, g.tryAcquire(), false)
	testutil.AssertEqual(t, g.occupied(), 2)

	g.release()
	testutil.AssertEqual(t, g.occupied(), 1)
	testutil.AssertEqual(t, g.tryAcquire(), true)
}

func TestSlotGateUnbounded(t *testing.T) {
	g := newSlotGate(Unbounded)

	for i := 0; i < 1000; i++ {
		testutil.AssertEqual(t, g.tryAcquire(), true)
	}
	testutil.AssertEqual(t, g.occupied(), 1000)
}

func TestSlotGateOverReleasePanics(t *testing.T) {
	g := newSlotGate(1)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on over-release")
		}
	}()
	g.release()
}

func TestSlotGateSetCapacity(t *testing.T) {
	g := newSlotGate(1)
	testutil.AssertEqual(t, g.tryAcquire(), true)
	testutil.AssertEqual(t, g.tryAcquire(), false)

	g.setCapacity(2)
	testutil.AssertEqual(t, g.limit(), 2)
	testutil.AssertEqual(t, g.tryAcquire(), true)

	// Shrinking below occupancy only blocks new acquisition.
	g.setCapacity(1)
	testutil.AssertEqual(t, g.occupied(), 2)
	testutil.AssertEqual(t, g.tryAcquire(), false)

	g.release()
	g.release()
	testutil.AssertEqual(t, g.tryAcquire(), true)
}
