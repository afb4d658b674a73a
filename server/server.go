package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/blockedge-co/gash-miniapp/rates"
	"github.com/blockedge-co/gash-miniapp/swap"
	"github.com/blockedge-co/gash-miniapp/users"
)

// Config defines HTTP server parameters.
type Config struct {
	ListenAddress   string
	RequestCeiling  int
	RequestWindow   time.Duration
	ShutdownTimeout time.Duration
}

// Server hosts the swap API endpoints.
type Server struct {
	cfg       Config
	engine    *swap.Engine
	rates     *rates.Provider
	ledger    *swap.Ledger
	directory *users.Directory
	requests  *swap.Limiter
	logger    *slog.Logger
}

// New constructs the HTTP server around the swap pipeline.
func New(cfg Config, engine *swap.Engine, provider *rates.Provider, ledger *swap.Ledger, directory *users.Directory, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine required")
	}
	if provider == nil {
		return nil, fmt.Errorf("rate provider required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if directory == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":7080"
	}
	if cfg.RequestCeiling <= 0 {
		cfg.RequestCeiling = 100
	}
	if cfg.RequestWindow <= 0 {
		cfg.RequestWindow = time.Minute
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		cfg:       cfg,
		engine:    engine,
		rates:     provider,
		ledger:    ledger,
		directory: directory,
		requests:  swap.NewLimiter(cfg.RequestCeiling, cfg.RequestWindow),
		logger:    logger,
	}, nil
}

// Handler assembles the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(s.throttleRequests)
		api.Method(http.MethodGet, "/rate", otelhttp.NewHandler(http.HandlerFunc(s.handleRate), "gashd.rate"))
		api.Method(http.MethodHead, "/rate", http.HandlerFunc(s.handleRateHead))
		api.Method(http.MethodPost, "/swap", otelhttp.NewHandler(http.HandlerFunc(s.handleSwap), "gashd.swap"))
		api.Method(http.MethodGet, "/transactions", otelhttp.NewHandler(http.HandlerFunc(s.handleTransactions), "gashd.transactions"))
	})

	return r
}

// Run starts the HTTP server and blocks until context cancellation.
func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server not configured")
	}
	srv := &http.Server{Addr: s.cfg.ListenAddress, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", "address", s.cfg.ListenAddress)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}
