// Package app bootstraps shared infrastructure and wires the services.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nbkbattle/nbk-battle/internal/battle"
	"github.com/nbkbattle/nbk-battle/internal/catalog"
	"github.com/nbkbattle/nbk-battle/internal/config"
	"github.com/nbkbattle/nbk-battle/internal/db/repository"
	"github.com/nbkbattle/nbk-battle/internal/logging"
	"github.com/nbkbattle/nbk-battle/internal/results"
	"github.com/nbkbattle/nbk-battle/internal/server"
	ws "github.com/nbkbattle/nbk-battle/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	http      *http.Server
	battleSvc *battle.Service
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	categoryRepo := repository.NewCategoryRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	gameRepo := repository.NewGameRepository(pool)

	catalogCache := catalog.NewCache(redisClient, cfg.Game.CatalogCacheTTL)
	catalogSvc := catalog.NewService(catalogStore{categoryRepo, questionRepo}, catalogCache, logger)

	stateMgr := battle.NewStateManager(redisClient, cfg.Game.SnapshotTTL, logger)
	wsHub := ws.NewHub(logger)

	resultsSvc := results.NewService(gameRepo, redisClient, logger, results.ServiceOptions{
		RecentLimit: cfg.Results.RecentLimit,
		RecentTTL:   cfg.Results.RecentTTL,
	})

	battleMetrics := battle.NewMetrics(registry)
	battleOpts := battle.DefaultServiceOptions()
	battleOpts.Session.QuestionSeconds = int(cfg.Game.QuestionSeconds / time.Second)
	battleOpts.Session.Triggers = battle.TriggerConfig{
		DoubleGapPoints: cfg.Game.DoubleGapPoints,
		BlockGapPoints:  cfg.Game.BlockGapPoints,
		MaxHeld:         cfg.Game.MaxHeldPowerUps,
	}
	battleSvc := battle.NewService(
		catalogSvc,
		usageRepo,
		stateMgr,
		resultsSvc,
		wsHub,
		battle.RealClock(),
		battleMetrics,
		battleOpts,
		logger,
	)

	handlers := server.Handlers{
		Battle:   battle.NewHTTPHandlers(battleSvc, logger),
		BattleWS: battle.NewWSHandler(battleSvc, wsHub, logger),
		Catalog:  catalog.NewHTTPHandlers(catalogSvc, logger),
		Results:  results.NewHTTPHandlers(resultsSvc, logger),
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, registry, handlers)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		http:      apiServer,
		battleSvc: battleSvc,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.battleSvc.Close()
	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

// catalogStore joins the category and question repositories behind the
// catalog read interface.
type catalogStore struct {
	categories *repository.CategoryRepository
	questions  *repository.QuestionRepository
}

var _ catalog.Store = catalogStore{}

func (s catalogStore) CategoriesByIDs(ctx context.Context, ids []string) ([]catalog.Category, error) {
	return s.categories.CategoriesByIDs(ctx, ids)
}

func (s catalogStore) ListAll(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.ListAll(ctx)
}

func (s catalogStore) QuestionsByCategories(ctx context.Context, categoryIDs []string) ([]catalog.Question, error) {
	return s.questions.QuestionsByCategories(ctx, categoryIDs)
}
