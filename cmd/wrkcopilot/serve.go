package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/catalog"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/fsm"
	handler "github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/http"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/otel"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/river"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/session"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/sqlite"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/config"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/logging"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
}

// newCatalog returns the catalog configured by cfg, traced and cached.
func newCatalog(cfg config.Config, logger *zap.Logger) *otel.TracingCatalog {
	var loader catalog.Loader = catalog.DefaultCatalog
	if cfg.CatalogPath != "" {
		loader = catalog.FileLoader{Path: cfg.CatalogPath}
	}
	return otel.NewTracingCatalog(catalog.NewCached(loader, catalog.Config{
		TTL:    cfg.CatalogTTL,
		Logger: logger.Named("catalog"),
	}))
}

// run wires every adapter and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.NewLogger(logging.Config{Component: "api", Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	// --- Telemetry ---
	otelCfg, err := otel.ConfigFromEnv()
	if err != nil {
		return err
	}
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	worker := river.NewEventWorker(logger.Named("worker"))
	client, err := river.Setup(ctx, store.DB(), logger.Named("jobs"), worker)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			logger.Warn("river stop", zap.Error(err))
		}
	}()

	publisher := otel.NewTracingPublisher(river.NewPublisher(client))
	automationRepo := otel.NewTracingAutomationRepository(store.Automations())
	quoteRepo := otel.NewTracingQuoteRepository(store.Quotes())
	discountRepo := otel.NewTracingDiscountRepository(store.Discounts())
	validator := fsm.New()

	// --- Application ---
	opts := []app.Option{app.WithLogger(logger)}
	automations := app.NewAutomationService(automationRepo, publisher, validator, opts...)
	discounts := app.NewDiscountService(discountRepo, automationRepo, publisher, opts...)
	quotes := app.NewQuoteService(quoteRepo, automations, discounts, newCatalog(cfg, logger), validator, publisher, opts...)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("wrkcopilot", otelchi.WithChiRoutes(router)))
	router.Use(session.Middleware(session.NewProvider(cfg.SessionSecret, 0)))

	api := humachi.New(router, huma.DefaultConfig("wrkcopilot", version))
	handler.Register(api, handler.Services{Automations: automations, Quotes: quotes, Discounts: discounts})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("wrkcopilot listening", zap.String("addr", srv.Addr), zap.String("docs", "/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
