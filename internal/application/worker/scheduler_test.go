package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/memory"
	"github.com/rezkam/todoreminder/internal/ptr"
)

const tick = 10 * time.Millisecond

// recordingHandler captures errors and panics reported by the scheduler.
type recordingHandler struct {
	mu     sync.Mutex
	errors []error
	panics []any
}

func (h *recordingHandler) HandleError(ctx context.Context, task string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
}

func (h *recordingHandler) HandlePanic(ctx context.Context, task string, panicVal any, stackTrace string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, panicVal)
}

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errors), len(h.panics)
}

func shutdown(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestScheduler_RunsRepeatedly(t *testing.T) {
	s := New()
	t.Cleanup(func() { shutdown(t, s) })

	var runs atomic.Int32
	ok := s.ScheduleRecurring("counter", tick, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.True(t, ok)

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, tick)
}

func TestScheduler_RejectsDuplicateName(t *testing.T) {
	s := New()
	t.Cleanup(func() { shutdown(t, s) })

	var first, second atomic.Int32
	require.True(t, s.ScheduleRecurring("job", tick, func(ctx context.Context) error {
		first.Add(1)
		return nil
	}))
	assert.False(t, s.ScheduleRecurring("job", tick, func(ctx context.Context) error {
		second.Add(1)
		return nil
	}))

	require.Eventually(t, func() bool { return first.Load() >= 2 }, time.Second, tick)
	assert.Zero(t, second.Load())
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New()

	assert.False(t, s.ScheduleRecurring("zero", 0, func(ctx context.Context) error { return nil }))
	assert.False(t, s.ScheduleRecurring("negative", -time.Second, func(ctx context.Context) error { return nil }))
	assert.False(t, s.Scheduled("zero"))
}

func TestScheduler_ErrorDoesNotStopTimer(t *testing.T) {
	h := &recordingHandler{}
	s := New(WithErrorHandler(h))
	t.Cleanup(func() { shutdown(t, s) })

	boom := errors.New("boom")
	var runs atomic.Int32
	s.ScheduleRecurring("failing", tick, func(ctx context.Context) error {
		runs.Add(1)
		return boom
	})

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, tick)

	errs, panics := h.counts()
	assert.GreaterOrEqual(t, errs, 2)
	assert.Zero(t, panics)
}

func TestScheduler_PanicDoesNotStopTimer(t *testing.T) {
	h := &recordingHandler{}
	s := New(WithErrorHandler(h))
	t.Cleanup(func() { shutdown(t, s) })

	var runs atomic.Int32
	s.ScheduleRecurring("panicky", tick, func(ctx context.Context) error {
		runs.Add(1)
		panic("kaboom")
	})

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, tick)

	errs, panics := h.counts()
	assert.Zero(t, errs)
	assert.GreaterOrEqual(t, panics, 2)
}

func TestScheduler_StopHaltsRuns(t *testing.T) {
	s := New()

	var runs atomic.Int32
	s.ScheduleRecurring("stoppable", tick, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, tick)

	s.Stop("stoppable")
	assert.False(t, s.Scheduled("stoppable"))

	// Wait for the loop goroutine to exit before sampling.
	shutdown(t, s)
	after := runs.Load()

	time.Sleep(5 * tick)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_StopUnknownIsNoop(t *testing.T) {
	s := New()

	assert.NotPanics(t, func() { s.Stop("never-registered") })
}

func TestScheduler_NameReusableAfterStop(t *testing.T) {
	s := New()
	t.Cleanup(func() { shutdown(t, s) })

	require.True(t, s.ScheduleRecurring("job", tick, func(ctx context.Context) error { return nil }))
	s.Stop("job")
	assert.True(t, s.ScheduleRecurring("job", tick, func(ctx context.Context) error { return nil }))
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New()
	t.Cleanup(func() { shutdown(t, s) })

	var active, maxActive, runs atomic.Int32
	s.ScheduleRecurring("slow", tick, func(ctx context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			cur := maxActive.Load()
			if n <= cur || maxActive.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(5 * tick)
		runs.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, tick)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestScheduler_RunHasOperationTimeout(t *testing.T) {
	s := New(WithOperationTimeout(time.Minute))
	t.Cleanup(func() { shutdown(t, s) })

	deadlines := make(chan time.Time, 1)
	s.ScheduleRecurring("deadline", tick, func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if ok {
			select {
			case deadlines <- deadline:
			default:
			}
		}
		return nil
	})

	select {
	case d := <-deadlines:
		assert.WithinDuration(t, time.Now().Add(time.Minute), d, 5*time.Second) //nolint:clocknow
	case <-time.After(time.Second):
		t.Fatal("task never ran with a deadline")
	}
}

func TestScheduler_ShutdownWaitsForInFlightRun(t *testing.T) {
	s := New()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.ScheduleRecurring("blocking", tick, func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 3*tick)
	defer cancel()
	err := s.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	shutdown(t, s)
}

func TestRegisterSchedulers_RunsReminderSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := clock.NewFake(now)
	store := memory.NewStore(memory.WithClock(fc))

	overdue, err := store.Create(ctx, domain.NewTodo{
		UserID:   "u1",
		Title:    "overdue",
		Status:   domain.TodoStatusPending,
		RemindAt: ptr.To(now.Add(-time.Minute)),
	})
	require.NoError(t, err)
	future, err := store.Create(ctx, domain.NewTodo{
		UserID:   "u1",
		Title:    "future",
		Status:   domain.TodoStatusPending,
		RemindAt: ptr.To(now.Add(time.Hour)),
	})
	require.NoError(t, err)

	s := RegisterSchedulers(store, RegisterConfig{ReminderInterval: tick, Clock: fc})
	t.Cleanup(func() { shutdown(t, s) })

	assert.True(t, s.Scheduled(ReminderTaskName))
	require.Eventually(t, func() bool {
		got, err := store.FindByID(ctx, overdue.ID)
		return err == nil && got.Status == domain.TodoStatusReminderDue
	}, time.Second, tick)

	got, err := store.FindByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TodoStatusPending, got.Status)
}

func TestRegisterSchedulers_Defaults(t *testing.T) {
	s := RegisterSchedulers(memory.NewStore(), RegisterConfig{})
	t.Cleanup(func() { shutdown(t, s) })

	assert.True(t, s.Scheduled(ReminderTaskName))
	assert.False(t, s.ScheduleRecurring(ReminderTaskName, time.Minute, func(ctx context.Context) error { return nil }))
}
