package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/api"
	"github.com/uxtriage/uxtriage/internal/config"
	"github.com/uxtriage/uxtriage/internal/handlers"
	"github.com/uxtriage/uxtriage/internal/retrieval"
	"github.com/uxtriage/uxtriage/internal/session"
	"github.com/uxtriage/uxtriage/internal/store"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Issue store: Postgres preferred, SQLite for development, none is a
	// valid degraded mode.
	var issueStore store.IssueStore
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		issueStore = pg
		logger.Info().Msg("connected to PostgreSQL")
	case cfg.SQLitePath != "":
		lite, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		issueStore = lite
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened SQLite store")
	default:
		logger.Warn().Msg("no issue store configured, searches will return no rows")
	}
	if issueStore != nil {
		defer issueStore.Close()
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		logger.Info().Msg("connected to Redis")
	}

	retriever := retrieval.New(issueStore, logger, cfg.StoreTimeout)
	dispatcher := agent.NewToolset(retriever, logger)
	oracle := agent.NewOpenAIClient(agent.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OracleTimeout,
	}, logger)
	orchestrator := agent.NewOrchestrator(oracle, dispatcher, logger, agent.OrchestratorConfig{
		MaxIterations: cfg.MaxTurnIterations,
	})
	sessions := session.NewManager()

	h := handlers.NewHandler(orchestrator, sessions, retriever, issueStore, rdb, logger)
	router := api.NewRouter(logger, h, rdb)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // turns may span several model calls
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("model", cfg.OpenAIModel).
			Bool("store", cfg.HasStore()).
			Msg("starting uxtriage server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
