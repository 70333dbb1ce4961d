package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/application/user"
	"github.com/rezkam/todoreminder/internal/config"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/memory"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/todoreminder/internal/infrastructure/persistence/sqlite"
)

// backend is what every store provides: todos, users and a way to release
// connections.
type backend interface {
	todo.Repository
	user.Repository
	io.Closer
}

var (
	_ backend = (*memory.Store)(nil)
	_ backend = (*postgres.Store)(nil)
	_ backend = (*sqlite.Store)(nil)
)

// openStore builds the store selected by cfg.Type.
func openStore(ctx context.Context, cfg config.StorageConfig) (backend, error) {
	switch cfg.Type {
	case config.StorageMemory:
		slog.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil

	case config.StoragePostgres:
		store, err := postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime.Std(),
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "url", maskPassword(cfg.Database.DSN))
		return store, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "path", cfg.SQLitePath)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
