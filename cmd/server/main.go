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
	_ "time/tzdata"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/craftly/ops-fec/internal/adapter/http"
	"github.com/craftly/ops-fec/internal/adapter/http/handler"
	"github.com/craftly/ops-fec/internal/adapter/http/middleware"
	postgresRepo "github.com/craftly/ops-fec/internal/adapter/repository/postgres"
	redisRepo "github.com/craftly/ops-fec/internal/adapter/repository/redis"
	"github.com/craftly/ops-fec/internal/fec"
	"github.com/craftly/ops-fec/internal/infrastructure/config"
	"github.com/craftly/ops-fec/internal/infrastructure/logger"
	"github.com/craftly/ops-fec/internal/infrastructure/metrics"
	"github.com/craftly/ops-fec/internal/infrastructure/postgres"
	"github.com/craftly/ops-fec/internal/infrastructure/redis"
	"github.com/craftly/ops-fec/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	chart, err := loadChart(cfg.ChartOfAccountsPath)
	if err != nil {
		return err
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	// Initialize repositories
	retrier := postgresRepo.NewRetrier(logger.WithComponent(log, "retrier"))
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool, m)
	exportRepo := postgresRepo.NewExportRepository(pool, retrier, m)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	projector := fec.NewProjector(chart, cfg.Location())
	exportUC := usecase.NewExportUseCase(invoiceRepo, exportRepo, idGen, projector, m, log)

	// Initialize handlers
	routerCfg := httpAdapter.RouterConfig{
		ExportHandler: handler.NewExportHandler(exportUC),
		Logger:        log,
	}

	var redisPinger handler.Pinger
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = redisPing(redisClient)
	}
	routerCfg.HealthHandler = handler.NewHealthHandler(pool, redisPinger)

	if cfg.RateLimitEnabled() {
		rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
		go rl.RunCleanup(ctx, 10*time.Minute, time.Hour)
		routerCfg.RateLimiter = rl
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("timezone", cfg.FECTimezone).
			Msg("starting server")
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

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// loadChart returns the default chart, overridden by path when set.
func loadChart(path string) (fec.ChartOfAccounts, error) {
	if path == "" {
		return fec.DefaultChart(), nil
	}

	chart, err := fec.LoadChart(path)
	if err != nil {
		return fec.ChartOfAccounts{}, fmt.Errorf("load chart of accounts: %w", err)
	}
	return chart, nil
}

func redisPing(client *goredis.Client) handler.Pinger {
	return handler.PingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
