package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner is satisfied by the scheduler and the HTTP server.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup returns the shutdown sequence: stop accepting requests, let
// in-flight scheduled tasks finish, then close stores and clients in order.
// Every step runs even if an earlier one fails.
func newCleanup(ctx context.Context, server, scheduler shutdowner, closers ...io.Closer) func() {
	return func() {
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down HTTP server", "error", err)
			}
		}

		if scheduler != nil {
			if err := scheduler.Shutdown(ctx); err != nil {
				slog.WarnContext(ctx, "scheduler shutdown timed out", "error", err)
			} else {
				slog.InfoContext(ctx, "scheduler shutdown complete")
			}
		}

		for _, c := range closers {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close resource", "error", err)
			}
		}
	}
}
