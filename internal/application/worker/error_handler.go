package worker

import (
	"context"
	"log/slog"
)

// ErrorHandler receives task failures for logging or alerting.
// Neither hook can stop the timer; the task runs again on the next tick.
type ErrorHandler interface {
	// HandleError is called when a run returns an error.
	HandleError(ctx context.Context, task string, err error)

	// HandlePanic is called when a run panics, with the recovered value and stack trace.
	HandlePanic(ctx context.Context, task string, panicVal any, stackTrace string)
}

// DefaultErrorHandler logs errors and panics with structured logging.
type DefaultErrorHandler struct{}

func (h *DefaultErrorHandler) HandleError(ctx context.Context, task string, err error) {
	slog.ErrorContext(ctx, "Scheduled task failed",
		slog.String("task", task),
		slog.String("error", err.Error()),
	)
}

func (h *DefaultErrorHandler) HandlePanic(ctx context.Context, task string, panicVal any, stackTrace string) {
	slog.ErrorContext(ctx, "Scheduled task panicked",
		slog.String("task", task),
		slog.Any("panic_value", panicVal),
		slog.String("stack_trace", stackTrace),
	)
}
