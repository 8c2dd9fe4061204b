package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightops/admin-gateway/internal/api"
	"github.com/brightops/admin-gateway/internal/core/form"
	"github.com/brightops/admin-gateway/internal/core/service"
	"github.com/brightops/admin-gateway/internal/infrastructure/config"
	mongodb "github.com/brightops/admin-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/brightops/admin-gateway/internal/infrastructure/db/redis"
	"github.com/brightops/admin-gateway/internal/infrastructure/memory"
	"github.com/brightops/admin-gateway/internal/infrastructure/remote"
	"github.com/brightops/admin-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	upstream := remote.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log)

	// --- Core services ---
	// Durable session scope in Redis, mirrored by the in-process scope.
	sessionRepo := memory.NewMirror(
		memory.NewSessionRepository(),
		redisdb.NewSessionRepository(rdb, log),
		cfg.Session.TTL,
	)
	sessions := service.NewSessionService(sessionRepo, cfg.Session.TTL, log)
	activity := service.NewActivityFeed(mongodb.NewActivityRepository(db), log)
	auth := service.NewAuthService(upstream, sessions, activity, cfg.JWTSecret, cfg.Session.TTL, log)
	products := service.NewProductService(log)

	forms := form.NewRegistry(cfg.Form.TTL, log)
	forms.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:          auth,
		Client:        upstream,
		Products:      products,
		Activity:      activity,
		Forms:         forms,
		Redis:         rdb,
		Mongo:         db,
		Upstream:      upstream,
		NavigateDelay: cfg.Form.NavigateDelay,
		NotFoundDelay: cfg.Form.NotFoundDelay,
		Log:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("gateway listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
