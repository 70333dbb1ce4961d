package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/clock"
)

// ReminderTaskName is the registration name of the reminder sweep.
const ReminderTaskName = "todo_reminder_checker"

// DefaultReminderInterval is how often the reminder sweep runs.
const DefaultReminderInterval = 60 * time.Second

// RegisterConfig tunes the tasks installed by RegisterSchedulers.
type RegisterConfig struct {
	ReminderInterval time.Duration
	Clock            clock.Clock
}

// RegisterSchedulers creates a Scheduler and installs the reminder sweep on it.
// A zero RegisterConfig uses DefaultReminderInterval and the system clock.
func RegisterSchedulers(repo todo.Repository, cfg RegisterConfig, opts ...Option) *Scheduler {
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = DefaultReminderInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}

	s := New(opts...)
	sweeper := todo.NewReminderSweeper(repo, cfg.Clock)

	s.ScheduleRecurring(ReminderTaskName, cfg.ReminderInterval, func(ctx context.Context) error {
		promoted, err := sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "Reminder sweep finished", "promoted", promoted)
		return nil
	})

	return s
}
