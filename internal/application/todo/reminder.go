package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
	"github.com/rezkam/todoreminder/internal/ptr"
)

// ReminderSweeper promotes overdue PENDING todos to REMINDER_DUE.
type ReminderSweeper struct {
	repo     Repository
	clock    clock.Clock
	promoted metric.Int64Counter
}

// NewReminderSweeper creates a sweeper reading time from c.
func NewReminderSweeper(repo Repository, c clock.Clock) *ReminderSweeper {
	promoted, err := otel.Meter(instrumentationName).Int64Counter(
		"todo.reminders.promoted",
		metric.WithDescription("Todos moved from PENDING to REMINDER_DUE by the reminder sweep"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &ReminderSweeper{
		repo:     repo,
		clock:    c,
		promoted: promoted,
	}
}

// Sweep runs one reminder pass and returns how many todos it promoted.
//
// The clock is read once; every record is judged against that instant.
// FindDueReminders already restricts results to PENDING todos. The sweep
// re-checks eligibility with the same predicate and makes each write
// conditional on the todo still being PENDING, so a todo completed while the
// sweep runs stays DONE.
//
// There is no batch limit. The first storage failure aborts the pass and is
// returned; the next scheduled pass picks up whatever was left.
func (r *ReminderSweeper) Sweep(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "todo.ReminderSweeper.Sweep")
	defer span.End()

	now := r.clock.Now()

	due, err := r.repo.FindDueReminders(ctx, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to find due reminders: %w", err)
	}

	promoted := 0
	for _, todo := range due {
		if !todo.ReminderEligible(now) {
			continue
		}

		_, err := r.repo.Update(ctx, todo.ID, domain.TodoPatch{
			Status:   ptr.To(domain.TodoStatusReminderDue),
			IfStatus: ptr.To(domain.TodoStatusPending),
		})
		if errors.Is(err, domain.ErrStatusChanged) || errors.Is(err, domain.ErrNotFound) {
			slog.DebugContext(ctx, "todo changed during reminder sweep, skipping",
				"todo_id", todo.ID,
				"error", err)
			continue
		}
		if err != nil {
			r.record(ctx, promoted)
			span.SetStatus(codes.Error, err.Error())
			return promoted, fmt.Errorf("failed to mark todo %s as reminder due: %w", todo.ID, err)
		}
		promoted++
	}

	r.record(ctx, promoted)
	span.SetAttributes(
		attribute.Int("todo.reminders.candidates", len(due)),
		attribute.Int("todo.reminders.promoted", promoted),
	)
	if promoted > 0 {
		slog.InfoContext(ctx, "reminder sweep promoted todos",
			"promoted", promoted,
			"candidates", len(due),
			"swept_at", now)
	}

	return promoted, nil
}

func (r *ReminderSweeper) record(ctx context.Context, n int) {
	if r.promoted != nil && n > 0 {
		r.promoted.Add(ctx, int64(n))
	}
}
