package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/opflow/pkg/metrics"
	"github.com/vnykmshr/opflow/pkg/operation"
	"github.com/vnykmshr/opflow/pkg/queue"
)

// Factory produces a fresh operation for each firing of a repeating or
// cron entry. Operations are single-submission, so every firing needs a
// new instance.
type Factory func() *operation.Operation

// Entry describes a scheduled entry.
type Entry struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron entries
	Created  time.Time
}

// Scheduler submits operations to a queue at scheduled times, with cron
// support.
type Scheduler interface {
	// One-time scheduling
	Schedule(id string, op *operation.Operation, runAt time.Time) error
	ScheduleAfter(id string, op *operation.Operation, delay time.Duration) error

	// Recurring scheduling
	ScheduleRepeating(id string, factory Factory, interval time.Duration) error
	ScheduleCron(id string, cronExpr string, factory Factory) error

	// Entry management
	Cancel(id string) bool
	CancelAll()
	List() []Entry

	// Lifecycle
	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	Queue        queue.Queue    // Target queue; a private one is created when nil
	Location     *time.Location // For cron scheduling
	TickInterval time.Duration  // How often to check for due entries (default: 50ms)
	MaxEntries   int            // Maximum number of scheduled entries (default: 10000)

	// Name labels this scheduler in exported metrics.
	Name string

	// Metrics enables Prometheus instrumentation.
	Metrics metrics.Config
}

type scheduledEntry struct {
	id           string
	op           *operation.Operation // one-time entries
	factory      Factory              // repeating and cron entries
	runAt        time.Time
	interval     time.Duration
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	queue        queue.Queue
	ownQueue     bool
	location     *time.Location
	tickInterval time.Duration
	maxEntries   int
	cronParser   cron.Parser

	name     string
	registry *metrics.Registry
	metrics  bool

	mu      sync.RWMutex
	entries map[string]*scheduledEntry
	ticker  *time.Ticker
	done    chan struct{}
	running bool
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	q := cfg.Queue
	ownQueue := false
	if q == nil {
		q = queue.New()
		ownQueue = true
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	registry := metrics.DefaultRegistry
	if cfg.Metrics.Registry != nil {
		registry = metrics.NewRegistry(cfg.Metrics.Registry)
	}

	return &scheduler{
		queue:        q,
		ownQueue:     ownQueue,
		location:     location,
		tickInterval: tickInterval,
		maxEntries:   maxEntries,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		name:         name,
		registry:     registry,
		metrics:      cfg.Metrics.Enabled,
		entries:      make(map[string]*scheduledEntry),
		done:         make(chan struct{}),
	}
}

// validateID checks entry ID constraints shared by every Schedule variant.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("entry ID cannot be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("entry ID too long (max 255 characters)")
	}
	return nil
}

// addEntry registers e under lock, enforcing uniqueness and the entry cap.
func (s *scheduler) addEntry(e *scheduledEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.id]; exists {
		return fmt.Errorf("entry with ID %q already exists, use a different ID or cancel the existing entry first", e.id)
	}
	if len(s.entries) >= s.maxEntries {
		return fmt.Errorf("cannot schedule entry: maximum number of entries (%d) reached", s.maxEntries)
	}

	s.entries[e.id] = e
	if s.metrics {
		s.registry.EntriesScheduled.WithLabelValues(s.name).Inc()
	}
	return nil
}

func (s *scheduler) Schedule(id string, op *operation.Operation, runAt time.Time) error {
	if err := validateID(id); err != nil {
		return err
	}
	if op == nil {
		return fmt.Errorf("operation cannot be nil")
	}
	if runAt.IsZero() {
		return fmt.Errorf("entry run time cannot be zero")
	}

	return s.addEntry(&scheduledEntry{
		id:      id,
		op:      op,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, op *operation.Operation, delay time.Duration) error {
	return s.Schedule(id, op, time.Now().Add(delay))
}

func (s *scheduler) ScheduleRepeating(id string, factory Factory, interval time.Duration) error {
	if err := validateID(id); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("operation factory cannot be nil")
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	return s.addEntry(&scheduledEntry{
		id:       id,
		factory:  factory,
		runAt:    time.Now(),
		interval: interval,
		created:  time.Now(),
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, factory Factory) error {
	if err := validateID(id); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("operation factory cannot be nil")
	}
	if cronExpr == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}

	sched, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return s.addEntry(&scheduledEntry{
		id:           id,
		factory:      factory,
		runAt:        sched.Next(time.Now().In(s.location)),
		cronSchedule: sched,
		created:      time.Now(),
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		delete(s.entries, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*scheduledEntry)
}

func (s *scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, Entry{
			ID:       e.id,
			RunAt:    e.runAt,
			Interval: e.interval,
			Created:  e.created,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RunAt.Before(entries[j].RunAt)
	})

	return entries
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	s.running = true
	s.ticker = time.NewTicker(s.tickInterval)

	go s.run()
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.done)
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if s.ownQueue {
			<-s.queue.Shutdown()
		}
	}()

	return stopped
}

func (s *scheduler) run() {
	defer func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			// A panicking factory must not kill the tick loop.
			func() {
				defer func() {
					_ = recover()
				}()
				s.processDueEntries()
			}()
		}
	}
}

func (s *scheduler) processDueEntries() {
	now := time.Now()

	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return
	}

	due := make([]*scheduledEntry, 0, len(s.entries))
	for id, e := range s.entries {
		if now.After(e.runAt) || now.Equal(e.runAt) {
			due = append(due, e)

			switch {
			case e.interval > 0:
				e.runAt = now.Add(e.interval)
			case e.cronSchedule != nil:
				e.runAt = e.cronSchedule.Next(now.In(s.location))
			default:
				delete(s.entries, id)
			}
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		op := e.op
		if e.factory != nil {
			op = e.factory()
		}
		if op == nil {
			continue
		}
		if err := s.queue.AddOperation(op); err != nil {
			// Submission failed (queue shut down, duplicate operation);
			// keep processing the remaining entries.
			continue
		}
		if s.metrics {
			s.registry.EntriesSubmitted.WithLabelValues(s.name).Inc()
		}
	}
}
