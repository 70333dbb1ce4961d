package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezkam/todoreminder/internal/infrastructure/http/handler"
	mw "github.com/rezkam/todoreminder/internal/infrastructure/http/middleware"
	"github.com/rezkam/todoreminder/internal/infrastructure/http/response"
)

// Defaults for zero ServerConfig fields.
const (
	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 1 << 20
)

// operationName names the server span otelhttp opens for every request.
const operationName = "todoreminder.http"

// ServerConfig holds listener limits and the request body cap.
// An empty Host listens on all interfaces.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

// withDefaults returns a copy with every unset or negative field replaced.
func (cfg ServerConfig) withDefaults() ServerConfig {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	cfg.ReadTimeout = positiveOr(cfg.ReadTimeout, DefaultReadTimeout)
	cfg.WriteTimeout = positiveOr(cfg.WriteTimeout, DefaultWriteTimeout)
	cfg.IdleTimeout = positiveOr(cfg.IdleTimeout, DefaultIdleTimeout)
	cfg.ReadHeaderTimeout = positiveOr(cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	cfg.MaxHeaderBytes = positiveOr(cfg.MaxHeaderBytes, DefaultMaxHeaderBytes)
	cfg.MaxBodyBytes = positiveOr(cfg.MaxBodyBytes, DefaultMaxBodyBytes)
	return cfg
}

func positiveOr[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// APIServer serves the todo reminder API.
type APIServer struct {
	server *http.Server
}

// NewAPIServer builds the router and the listener around it.
// Routes that act for a user require a bearer token checked by tokens.
func NewAPIServer(h *handler.Handler, tokens mw.TokenValidator, cfg ServerConfig) *APIServer {
	cfg = cfg.withDefaults()

	return &APIServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           otelhttp.NewHandler(newRouter(h, tokens, cfg.MaxBodyBytes), operationName),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}
}

func newRouter(h *handler.Handler, tokens mw.TokenValidator, maxBodyBytes int64) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", health)
	h.Routes(r, mw.NewAuth(tokens).Validate)

	return r
}

type healthStatus struct {
	Status string `json:"status"`
}

func health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, healthStatus{Status: "ok"})
}

// Addr is the address the server listens on.
func (s *APIServer) Addr() string {
	return s.server.Addr
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *APIServer) Start() error {
	slog.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler, tracing included.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
