/*
Package schedule submits operations to a queue at scheduled times.

One-time entries carry a concrete operation; repeating and cron entries
carry a Factory that produces a fresh operation for each firing, because
operations are single-submission.

	q := queue.New()
	s := schedule.NewWithConfig(schedule.Config{Queue: q})
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}
	defer func() { <-s.Stop() }()

	// Run a report once, five minutes from now.
	_ = s.ScheduleAfter("daily-report", reportOp, 5*time.Minute)

	// Refresh a cache every 30 seconds.
	_ = s.ScheduleRepeating("cache-refresh", newRefreshOp, 30*time.Second)

	// Cron with seconds granularity: every day at 02:00:00.
	_ = s.ScheduleCron("backup", "0 0 2 * * *", newBackupOp)

Entries fire on a tick loop (50ms resolution by default); exact-time
precision is not a goal. Submitted operations compete in the target
queue by priority and dependency readiness like any other operation.

When Config.Queue is nil the scheduler owns a private queue and shuts it
down on Stop.
*/
package schedule
