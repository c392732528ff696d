package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mariafernandaa20/prexun-caja/internal/api"
	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/auth"
	"github.com/mariafernandaa20/prexun-caja/internal/config"
	"github.com/mariafernandaa20/prexun-caja/internal/ledger"
	"github.com/mariafernandaa20/prexun-caja/internal/metrics"
	"github.com/mariafernandaa20/prexun-caja/internal/middleware"
	"github.com/mariafernandaa20/prexun-caja/internal/service"
	"github.com/mariafernandaa20/prexun-caja/internal/storage/postgres"
	"github.com/mariafernandaa20/prexun-caja/internal/storage/sqlite"
	"github.com/mariafernandaa20/prexun-caja/internal/storage/sqlstore"
	"github.com/mariafernandaa20/prexun-caja/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL, postgres.DefaultOptions())
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	events := audit.NewWorker(store, cfg.AuditBuffer)
	events.Start()
	defer events.Shutdown()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	l := ledger.New(store,
		ledger.WithDirectory(ledger.NewStaticDirectory(cfg.CampusIDs)),
		ledger.WithEvents(events),
		ledger.WithMetrics(m),
		ledger.WithFolioWidth(cfg.FolioWidth),
	)

	interceptors := []connect.Interceptor{middleware.MetricsInterceptor(m)}
	if cfg.JWTSecret != "" {
		interceptors = append(interceptors, middleware.RequireAuth(auth.NewJWTManager(cfg.JWTSecret, 12*time.Hour)))
	} else {
		slog.Warn("JWT_SECRET not set, operator tokens are not verified")
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor())
	handlerOpts := connect.WithInterceptors(interceptors...)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS)

	cajaPath, cajaHandler := api.NewCajaServiceHandler(service.NewCajaService(l), handlerOpts)
	router.Handle(cajaPath+"*", cajaHandler)

	ledgerPath, ledgerHandler := api.NewLedgerServiceHandler(service.NewLedgerService(l), handlerOpts)
	router.Handle(ledgerPath+"*", ledgerHandler)

	router.Get("/receipts/{uuid}", service.ReceiptHandler(l))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
