package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"daily-pick-ranker/api"
	"daily-pick-ranker/cache"
	"daily-pick-ranker/config"
	"daily-pick-ranker/database"
	"daily-pick-ranker/ingest"
	"daily-pick-ranker/ranking"
)

const shutdownTimeout = 10 * time.Second

// App represents the main application
type App struct {
	config *config.Config
	logger *zap.Logger

	db       *database.Database
	repo     *database.Repository
	redis    *cache.RedisClient
	runCache *cache.RunCache

	ranking *RankingService
	daily   *DailyJob
}

// New creates a new application instance
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Init connects storage, migrates the schema and wires the ranking and ingestion services
func (a *App) Init(ctx context.Context) error {
	// 1. Database Connection
	a.logger.Info("connecting to database", zap.String("host", a.config.DatabaseHost))

	if _, err := strconv.Atoi(a.config.DatabasePort); err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(ctx, database.Config{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db
	a.repo = database.NewRepository(db, a.logger.Named("database"))

	if err := a.repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Redis Connection
	a.redis = cache.NewRedisClient(a.config.RedisHost, a.config.RedisPort, a.config.RedisPassword, a.logger.Named("redis"))
	if a.redis == nil {
		a.logger.Warn("redis unavailable, run locking and caching disabled")
	}
	a.runCache = cache.NewRunCache(a.redis)

	// 3. Ranking engine
	engine := ranking.NewEngine(a.repo, ranking.PolicyFromConfig(a.config.Ranking), a.logger.Named("ranking"))
	engine.News = a.repo
	a.ranking = NewRankingService(engine, a.runCache, a.config.Universe, a.config.Ranking.LockTTL, a.logger.Named("service"))

	// 4. Ingestion; without credentials the collector fails closed on every run
	var provider ingest.Provider
	alpaca, err := ingest.NewAlpacaProvider(a.config.Alpaca)
	switch {
	case errors.Is(err, ingest.ErrMissingCredentials):
		a.logger.Warn("market data credentials missing, ingestion disabled")
	case err != nil:
		return fmt.Errorf("market data provider: %w", err)
	default:
		provider = alpaca
	}
	collector := ingest.NewCollector(provider, a.repo, a.config.Ingest, a.logger.Named("ingest"))
	a.daily = NewDailyJob(collector, a.ranking, a.logger.Named("daily"))

	return nil
}

// Serve runs the HTTP API until SIGINT/SIGTERM
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(a.ranking, a.repo, a.logger.Named("api"))
	server.SetLatestPickCache(a.runCache)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", a.config.HTTPPort),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("graceful shutdown completed")
	return nil
}

// Rank runs one ranking pass over the configured universe
func (a *App) Rank(ctx context.Context) (*ranking.RunResult, error) {
	return a.ranking.Rank(ctx, nil)
}

// Ingest refreshes market data for the configured universe
func (a *App) Ingest(ctx context.Context) (*ingest.Result, error) {
	return a.daily.ingester.Run(ctx, a.config.Universe)
}

// Daily ingests then ranks the configured universe
func (a *App) Daily(ctx context.Context) (*DailyResult, error) {
	return a.daily.Run(ctx, nil)
}

// Close releases database and Redis connections
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
