package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/todoreminder/internal/application/auth"
	"github.com/rezkam/todoreminder/internal/application/todo"
	"github.com/rezkam/todoreminder/internal/application/user"
	"github.com/rezkam/todoreminder/internal/application/worker"
	"github.com/rezkam/todoreminder/internal/config"
	"github.com/rezkam/todoreminder/internal/infrastructure/cache"
	httpserver "github.com/rezkam/todoreminder/internal/infrastructure/http"
	"github.com/rezkam/todoreminder/internal/infrastructure/http/handler"
	"github.com/rezkam/todoreminder/internal/infrastructure/observability"
)

var version = "dev"

func main() {
	showUsage := flag.Bool("h", false, "print supported environment variables and exit")
	flag.Parse()
	if *showUsage {
		config.Usage(os.Stdout)
		return
	}

	if err := run(); err != nil {
		// slog may not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	level, err := cfg.Observability.SlogLevel()
	if err != nil {
		return err
	}
	tel, err := observability.Init(ctx, observability.Config{
		Enabled:        cfg.Observability.OTelEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		LogLevel:       level,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to shut down telemetry: %v\n", err)
		}
	}()
	slog.SetDefault(tel.Logger)

	slog.InfoContext(ctx, "starting todoreminder", "env", cfg.Env, "version", version)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	var todoRepo todo.Repository = store
	var cacheCloser io.Closer
	if cfg.Cache.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisStore := cache.NewRedisStore(rdb)
		cacheCloser = redisStore
		todoRepo = cache.NewTodoRepository(store, redisStore, cfg.Cache.TTL.Std())
		slog.InfoContext(ctx, "todo listing cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL.Std())
	}

	authenticator, err := auth.NewAuthenticator(auth.Config{
		Secret:        cfg.Auth.JWTSecret,
		TTL:           cfg.Auth.JWTTTL.Std(),
		RefreshSecret: cfg.Auth.JWTRefreshSecret,
		RefreshTTL:    cfg.Auth.JWTRefreshTTL.Std(),
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to init authenticator: %w", err)
	}

	todoService := todo.NewService(todoRepo, store)
	userService := user.NewService(store, authenticator)

	// The sweep writes through todoRepo so promoted todos invalidate cached pages.
	scheduler := worker.RegisterSchedulers(todoRepo,
		worker.RegisterConfig{ReminderInterval: cfg.Worker.ReminderInterval.Std()},
		worker.WithOperationTimeout(cfg.Worker.OperationTimeout.Std()),
	)

	server := httpserver.NewAPIServer(handler.NewHandler(todoService, userService), authenticator, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:      cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:       cfg.HTTP.IdleTimeout.Std(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Std(),
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case runErr = <-errResult:
		slog.ErrorContext(ctx, "server failed, shutting down", "error", runErr)
	}

	// The root context is already cancelled; cleanup gets its own window.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
	defer shutdownCancel()
	newCleanup(shutdownCtx, server, scheduler, cacheCloser, store)()

	return runErr
}
