package schedule_test

import (
	"context"
	"fmt"
	"time"

	"github.com/vnykmshr/opflow/pkg/operation"
	"github.com/vnykmshr/opflow/pkg/queue"
	"github.com/vnykmshr/opflow/pkg/schedule"
)

func Example_oneTime() {
	q := queue.New()
	s := schedule.NewWithConfig(schedule.Config{
		Queue:        q,
		TickInterval: 5 * time.Millisecond,
	})
	if err := s.Start(); err != nil {
		fmt.Println("start failed:", err)
		return
	}
	defer func() { <-s.Stop() }()

	op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
		fmt.Println("report generated")
		return nil, nil
	})
	if err := s.ScheduleAfter("report", op, 10*time.Millisecond); err != nil {
		fmt.Println("schedule failed:", err)
		return
	}

	<-op.Done()
	// Output: report generated
}

func Example_repeating() {
	s := schedule.NewWithConfig(schedule.Config{
		TickInterval: 5 * time.Millisecond,
	})
	if err := s.Start(); err != nil {
		fmt.Println("start failed:", err)
		return
	}

	fired := make(chan *operation.Operation, 16)
	factory := func() *operation.Operation {
		op := operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
			return nil, nil
		})
		fired <- op
		return op
	}
	if err := s.ScheduleRepeating("heartbeat", factory, 10*time.Millisecond); err != nil {
		fmt.Println("schedule failed:", err)
		return
	}

	// Each firing submits a fresh operation.
	for i := 0; i < 3; i++ {
		<-(<-fired).Done()
	}
	s.Cancel("heartbeat")
	<-s.Stop()

	fmt.Println("heartbeat fired 3 times")
	// Output: heartbeat fired 3 times
}

func ExampleScheduler_scheduleCron() {
	s := schedule.NewWithConfig(schedule.Config{Location: time.UTC})

	backup := func() *operation.Operation {
		return operation.NewFunc(func(ctx context.Context, _ *operation.Operation) (interface{}, error) {
			return nil, nil
		})
	}

	// Seconds-granularity cron: every day at 02:00:00 UTC.
	if err := s.ScheduleCron("backup", "0 0 2 * * *", backup); err != nil {
		fmt.Println("schedule failed:", err)
		return
	}

	entries := s.List()
	fmt.Printf("%d entry scheduled: %s\n", len(entries), entries[0].ID)
	// Output: 1 entry scheduled: backup
}
