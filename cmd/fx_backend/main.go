package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/fx_rates_service/internal/adapters/ratesource"
	"github.com/SscSPs/fx_rates_service/internal/background"
	portsrepo "github.com/SscSPs/fx_rates_service/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rates_service/internal/core/registry"
	"github.com/SscSPs/fx_rates_service/internal/core/services"
	"github.com/SscSPs/fx_rates_service/internal/handlers"
	"github.com/SscSPs/fx_rates_service/internal/metrics"
	"github.com/SscSPs/fx_rates_service/internal/middleware"
	"github.com/SscSPs/fx_rates_service/internal/platform/config"
	"github.com/SscSPs/fx_rates_service/internal/repositories/database/memory"
	"github.com/SscSPs/fx_rates_service/internal/repositories/database/pgsql"
	"github.com/SscSPs/fx_rates_service/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 15 * time.Second

// @title FX Rates API
// @version 1.0
// @description Resolves exchange rates published by central banks and other rate providers.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	holder, err := setupRegistry(ctx, cfg, repos, logger)
	if err != nil {
		logger.Error("Failed to load registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetcher := ratesource.NewClient(ctx, ratesource.Config{
		BaseURL:      cfg.RateAPIBaseURL,
		TokenURL:     cfg.RateAPITokenURL,
		ClientID:     cfg.RateAPIClientID,
		ClientSecret: cfg.RateAPIClientSecret,
		Timeout:      cfg.RateAPITimeout,
	}, logger.With(slog.String("component", "ratesource")))

	serviceContainer := services.NewServiceContainer(cfg, repos, services.Dependencies{
		Registry: holder,
		Fetcher:  fetcher,
		Metrics:  metrics.NewRateMetrics(promReg),
		Logger:   logger,
	})

	background.NewBackgroundTasks(serviceContainer.ExchangeRate, cfg.RefreshInterval,
		logger.With(slog.String("component", "background"))).StartAll(ctx)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, promReg); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server exiting")
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// setupRepositories opens PostgreSQL when a URL is configured and falls back to the in-memory store otherwise.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No database configured, quotes are kept in memory only")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Migrations use a separate database/sql connection through the pgx stdlib driver.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// setupRegistry loads the provider tables, overlays the pegs stored in the database and watches the file for edits.
func setupRegistry(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) (*registry.Holder, error) {
	snapshot, err := config.LoadRegistry(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}

	storedPegs, err := repos.QuoteRepo.LoadPeggedCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot, err = snapshot.WithPegs(storedPegs); err != nil {
		return nil, err
	}
	logger.Info("Registry loaded",
		slog.Int("providers", len(snapshot.Providers())),
		slog.Int("pegs", len(snapshot.Pegs())),
		slog.Int("stored_pegs", len(storedPegs)))

	holder := registry.NewHolder(snapshot)
	if err := config.WatchRegistry(cfg.RegistryFile, holder, storedPegs, logger); err != nil {
		return nil, err
	}
	return holder, nil
}
