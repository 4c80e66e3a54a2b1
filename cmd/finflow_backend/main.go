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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/sync/errgroup"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/finflow/finflow_backend/internal/adapters/ratesource"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
	"github.com/finflow/finflow_backend/internal/handlers"
	"github.com/finflow/finflow_backend/internal/middleware"
	"github.com/finflow/finflow_backend/internal/platform/config"
	"github.com/finflow/finflow_backend/internal/repositories/database/pgsql"
	"github.com/finflow/finflow_backend/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	rateSource := ratesource.NewHTTPRateSource(cfg.RateSourceURL, nil)
	serviceContainer := services.NewServiceContainer(
		repos,
		rateSource,
		cfg.BaseCurrency,
		services.WithPassBudget(cfg.MaterializerBudget),
	)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.Default(),
		middleware.RateLimit(limiter.New(memory.NewStore(), limiter.Rate{
			Period: time.Minute,
			Limit:  cfg.RateLimitRPM,
		})),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runMaterializerLoop(ctx, serviceContainer.Materializer, cfg.MaterializerInterval, logger)
		return nil
	})

	if cfg.RateSourceURL != "" {
		g.Go(func() error {
			runRateRefreshLoop(ctx, serviceContainer.ExchangeRate, cfg.RateRefreshInterval, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

// runMaterializerLoop runs one catch-up pass immediately (recovering any
// occurrences missed while the process was down), then one pass per tick.
func runMaterializerLoop(ctx context.Context, m portssvc.MaterializerSvc, interval time.Duration, logger *slog.Logger) {
	loopCtx := middleware.WithLogger(ctx, logger.With(slog.String("job", "materializer")))

	runPass := func() {
		created, err := m.RunOnce(loopCtx, time.Now().UTC())
		if err != nil {
			logger.Error("Materialization pass failed", slog.String("error", err.Error()))
			return
		}
		if created > 0 {
			logger.Info("Materialization pass completed", slog.Int("created", created))
		}
	}

	runPass()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Materializer loop stopped")
			return
		case <-ticker.C:
			runPass()
		}
	}
}

// runRateRefreshLoop refreshes spot rates and the daily snapshot once at
// boot and then on every tick.
func runRateRefreshLoop(ctx context.Context, svc portssvc.ExchangeRateSvcFacade, interval time.Duration, logger *slog.Logger) {
	loopCtx := middleware.WithLogger(ctx, logger.With(slog.String("job", "rate_refresh")))

	refresh := func() {
		if err := svc.RefreshRates(loopCtx, time.Now().UTC()); err != nil {
			logger.Error("Rate refresh failed", slog.String("error", err.Error()))
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Rate refresh loop stopped")
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// runMigrations applies all pending "up" migrations using a short-lived
// database/sql connection compatible with the pgx pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

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

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}
