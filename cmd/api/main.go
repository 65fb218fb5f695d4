// Package main is the entry point for the Respira API server.
//
// Respira turns a per-user event log (daily smoke logs, urge events,
// focus game sessions) into derived progress: streaks, trends,
// consistency, goal projection and a coach-ready context summary.
//
// The layout follows Clean Architecture and DDD:
// - Domain: pure tracking and insight logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repositories, cache, external coach API
// - Interface: HTTP endpoints
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

	"github.com/respira-app/respira-server/config"
	"github.com/respira-app/respira-server/internal/application/command"
	"github.com/respira-app/respira-server/internal/application/query"
	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/internal/infrastructure/external/coach"
	"github.com/respira-app/respira-server/internal/infrastructure/persistence/postgres"
	"github.com/respira-app/respira-server/internal/infrastructure/persistence/redis"
	httpserver "github.com/respira-app/respira-server/internal/interface/http"
	"github.com/respira-app/respira-server/internal/interface/http/handlers"
	"github.com/respira-app/respira-server/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Respira API server",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional derived-context cache)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var contextCache tracking.ContextCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			contextCache = redis.NewContextCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	logRepo := postgres.NewLogRepository(dbConn)
	goalRepo := postgres.NewGoalRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	classifier := insight.NewClassifier(cfg.Tracking.UnitCost)
	projector := insight.NewProjector(nil, goalRepo)
	rewards := insight.NewEngine(nil)

	contextQuery := query.NewGetProgressContextHandler(
		logRepo, goalRepo, contextCache, rewards,
		cfg.Tracking.UnitCost, cfg.Tracking.ContextTTL,
	)
	calendarQuery := query.NewGetCalendarHandler(logRepo, classifier)
	lifetimeQuery := query.NewGetLifetimeStatsHandler(logRepo)
	insightsQuery := query.NewGetInsightsHandler(logRepo, goalRepo, projector)
	logStatsQuery := query.NewGetLogStatsHandler(logRepo)
	urgeStatsQuery := query.NewGetUrgeStatsHandler(logRepo)
	gameStatsQuery := query.NewGetGameStatsHandler(logRepo)

	recordSmokeLogCmd := command.NewRecordSmokeLogHandler(logRepo, contextCache)
	recordUrgeCmd := command.NewRecordUrgeHandler(logRepo, contextCache)
	recordGameCmd := command.NewRecordGameSessionHandler(logRepo, contextCache)
	setGoalCmd := command.NewSetGoalHandler(goalRepo, contextCache)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. COACH PIPELINE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing coach client...")

	coachConfig := coach.DefaultClientConfig(cfg.Coach.BaseURL)
	coachConfig.APIKey = cfg.Coach.APIKey
	coachConfig.Model = cfg.Coach.Model
	coachConfig.Temperature = cfg.Coach.Temperature
	coachConfig.MaxTokens = cfg.Coach.MaxTokens
	coachConfig.Timeout = cfg.Coach.RequestTimeout
	coachConfig.Logger = log
	coachConfig.Debug = cfg.App.Debug
	coachClient := coach.NewClient(coachConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("database", func(ctx context.Context) error {
		return dbConn.Ping(ctx)
	})
	if redisCache != nil {
		health.AddCheck("cache", func(ctx context.Context) error {
			return redisCache.Ping(ctx)
		})
	}
	health.AddCheck("coach", func(ctx context.Context) error {
		if !coachClient.IsHealthy() {
			return errors.New("coach circuit open")
		}
		return nil
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.RequestTimeout = cfg.HTTP.RequestTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		GetProgressContextHandler: contextQuery,
		GetCalendarHandler:        calendarQuery,
		GetLifetimeStatsHandler:   lifetimeQuery,
		GetInsightsHandler:        insightsQuery,
		GetLogStatsHandler:        logStatsQuery,
		GetUrgeStatsHandler:       urgeStatsQuery,
		GetGameStatsHandler:       gameStatsQuery,
		RecordSmokeLogHandler:     recordSmokeLogCmd,
		RecordUrgeHandler:         recordUrgeCmd,
		RecordGameSessionHandler:  recordGameCmd,
		SetGoalHandler:            setGoalCmd,
		CoachGuard:                coach.NewGuard(),
		CoachPrompts:              coach.NewPromptBuilder(),
		CoachClient:               coachClient,
		Logger:                    logger.Default(),
		HealthChecker:             health,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. START
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("Respira API server is running", "address", httpServer.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
