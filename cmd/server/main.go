package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flywinger/bolt-user-auth/internal/api"
	"github.com/flywinger/bolt-user-auth/internal/api/session"
	"github.com/flywinger/bolt-user-auth/internal/core/service"
	"github.com/flywinger/bolt-user-auth/internal/infrastructure/config"
	"github.com/flywinger/bolt-user-auth/internal/infrastructure/crypto"
	mongodb "github.com/flywinger/bolt-user-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/flywinger/bolt-user-auth/internal/infrastructure/db/redis"
	"github.com/flywinger/bolt-user-auth/internal/infrastructure/queue"
	"github.com/flywinger/bolt-user-auth/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	if err := cfg.Validate(log); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Owned store handles: opened here, passed by reference, closed on
	// shutdown. No package-level connection state.
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)
	users := redisdb.NewCachedUserRepository(mongodb.NewUserRepository(db, hasher), rdb, log)

	audit := queue.NewDispatcher(0, mongodb.NewEventRepository(db), log)
	audit.Start(ctx)

	identity := service.NewIdentityService(users, hasher, audit, log)
	sessions := session.NewManager(cfg.SessionSecret, session.DefaultTTL, cfg.IsProduction())

	e := api.NewRouter(identity, sessions, audit, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
