package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rezkam/todoreminder/internal/application/worker"

// Task is one unit of recurring work. The context carries the per-run operation timeout.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on fixed intervals.
//
// A task never runs concurrently with itself: each named task has one loop
// goroutine that runs the task inline, so ticks arriving while a run is in
// flight are dropped.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup

	operationTimeout time.Duration // Timeout for a single run
	errorHandler     ErrorHandler

	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

type entry struct {
	interval time.Duration
	stop     chan struct{}
}

// Option is a functional option for configuring Scheduler.
type Option func(*Scheduler)

// WithOperationTimeout sets the timeout applied to each task run.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.operationTimeout = d
	}
}

// WithErrorHandler sets a custom error handler for task errors and panics.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Scheduler) {
		s.errorHandler = h
	}
}

// New creates an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		entries:          make(map[string]*entry),
		operationTimeout: 30 * time.Second, // Default: 30s per run
		errorHandler:     &DefaultErrorHandler{},
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	if s.runs, err = meter.Int64Counter("scheduler.task.runs",
		metric.WithDescription("Scheduled task runs by outcome")); err != nil {
		otel.Handle(err)
	}
	if s.duration, err = meter.Float64Histogram("scheduler.task.duration",
		metric.WithDescription("Scheduled task run duration"),
		metric.WithUnit("s")); err != nil {
		otel.Handle(err)
	}

	return s
}

// ScheduleRecurring registers task to run every interval until stopped.
// The first run happens one interval after registration.
// Returns false, and logs a warning, if name is already registered or the
// interval is not positive.
func (s *Scheduler) ScheduleRecurring(name string, interval time.Duration, task Task) bool {
	if interval <= 0 {
		slog.Warn("Rejected task with non-positive interval", "task", name, "interval", interval)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		slog.Warn("Task already scheduled, ignoring duplicate registration", "task", name)
		return false
	}

	e := &entry{
		interval: interval,
		stop:     make(chan struct{}),
	}
	s.entries[name] = e

	s.wg.Go(func() {
		s.loop(name, e, task)
	})

	slog.Info("Task scheduled", "task", name, "interval", interval)
	return true
}

// Stop cancels the timer for name and removes the registration.
// A run already in progress finishes on its own context.
// Stopping an unknown name is a no-op.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return
	}
	close(e.stop)
	delete(s.entries, name)

	slog.Info("Task stopped", "task", name)
}

// Scheduled reports whether name is currently registered.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[name]
	return ok
}

// Shutdown stops every task and waits for in-flight runs to finish.
// Returns the context error if ctx ends first.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for name, e := range s.entries {
		close(e.stop)
		delete(s.entries, name)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

func (s *Scheduler) loop(name string, e *entry, task Task) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
		}

		// Stop wins over a tick that raced with it.
		select {
		case <-e.stop:
			return
		default:
		}

		s.runOnce(name, task)

		// Drop a tick that fired while the run was in flight.
		select {
		case <-ticker.C:
			slog.Debug("Skipped overlapping tick", "task", name)
		default:
		}
	}
}

// runOnce executes a single run on a fresh context, recovering panics.
func (s *Scheduler) runOnce(name string, task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), s.operationTimeout)
	defer cancel()

	start := time.Now() //nolint:clocknow // elapsed time only
	err := s.executeWithRecovery(ctx, name, task)

	outcome := "success"
	switch {
	case IsPanic(err):
		outcome = "panic"
	case err != nil:
		outcome = "error"
		s.errorHandler.HandleError(ctx, name, err)
	}

	attrs := metric.WithAttributes(
		attribute.String("task", name),
		attribute.String("outcome", outcome),
	)
	if s.runs != nil {
		s.runs.Add(ctx, 1, attrs)
	}
	if s.duration != nil {
		s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func (s *Scheduler) executeWithRecovery(ctx context.Context, name string, task Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			stackTrace := string(debug.Stack())
			s.errorHandler.HandlePanic(ctx, name, r, stackTrace)
			err = PanicError{Task: name, Value: r, StackTrace: stackTrace}
		}
	}()
	return task(ctx)
}
