package queue

import (
	"context"
	"fmt"
	"testing"

	"github.com/vnykmshr/opflow/pkg/operation"
)

// BenchmarkSubmitAndFinish measures the full submit-dispatch-finish cycle
// for a trivial synchronous operation
func BenchmarkSubmitAndFinish(b *testing.B) {
	q := NewWithConfig(Config{MaxConcurrent: Unbounded})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
			return nil, nil
		})
		if err := q.AddOperation(op); err != nil {
			b.Fatal(err)
		}
		<-op.Done()
	}
}

// BenchmarkAddFunc measures the bare-function submission path
func BenchmarkAddFunc(b *testing.B) {
	q := NewWithConfig(Config{MaxConcurrent: Unbounded})
	fn := func(ctx context.Context) error { return nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		op, err := q.AddFunc(fn)
		if err != nil {
			b.Fatal(err)
		}
		<-op.Done()
	}
}

// BenchmarkConcurrentSubmission measures throughput with many submitters
func BenchmarkConcurrentSubmission(b *testing.B) {
	q := NewWithConfig(Config{MaxConcurrent: Unbounded})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
				return nil, nil
			})
			if err := q.AddOperation(op); err != nil {
				b.Fatal(err)
			}
			<-op.Done()
		}
	})
}

// BenchmarkDependencyChain measures dispatch through a linear dependency chain
func BenchmarkDependencyChain(b *testing.B) {
	lengths := []int{2, 8, 32}

	for _, length := range lengths {
		b.Run(fmt.Sprintf("Length-%d", length), func(b *testing.B) {
			q := NewWithConfig(Config{MaxConcurrent: Unbounded})

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ops := make([]*operation.Operation, length)
				for j := range ops {
					ops[j] = operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
						return nil, nil
					})
					if j > 0 {
						if err := ops[j].AddDependency(ops[j-1]); err != nil {
							b.Fatal(err)
						}
					}
				}
				if err := q.AddOperations(ops, true); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkHeapOrdering measures ready-heap churn with mixed priorities
func BenchmarkHeapOrdering(b *testing.B) {
	priorities := []operation.Priority{
		operation.VeryLow, operation.Low, operation.Normal,
		operation.High, operation.VeryHigh,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		q := NewWithConfig(Config{MaxConcurrent: 1, Suspended: true})
		ops := make([]*operation.Operation, 100)
		for j := range ops {
			ops[j] = operation.NewWithConfig(operation.Config{
				Priority: priorities[j%len(priorities)],
				Work: operation.WorkFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
					return nil, nil
				}),
			})
			if err := q.AddOperation(ops[j]); err != nil {
				b.Fatal(err)
			}
		}
		b.StartTimer()

		q.SetSuspended(false)
		for _, op := range ops {
			<-op.Done()
		}
	}
}

// BenchmarkStateInspection measures the introspection methods
func BenchmarkStateInspection(b *testing.B) {
	q := NewWithConfig(Config{Suspended: true})
	for i := 0; i < 100; i++ {
		op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
			return nil, nil
		})
		if err := q.AddOperation(op); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if q.ReadyCount() < 0 || q.ExecutingCount() < 0 || q.PendingCount() < 0 {
				b.Fatal("unexpected negative counts")
			}
		}
	})
}

// BenchmarkMemoryAllocation measures allocation per submission
func BenchmarkMemoryAllocation(b *testing.B) {
	b.ReportAllocs()

	q := NewWithConfig(Config{MaxConcurrent: Unbounded})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
			return nil, nil
		})
		if err := q.AddOperation(op); err != nil {
			b.Fatal(err)
		}
		<-op.Done()
	}
}
