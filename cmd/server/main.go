// Command server runs the CortexBuild auth and API gateway service.
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

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cortexbuild/platform/internal/api"
	"github.com/cortexbuild/platform/internal/core/ports"
	"github.com/cortexbuild/platform/internal/core/service"
	"github.com/cortexbuild/platform/internal/infrastructure/db/memory"
	mongodb "github.com/cortexbuild/platform/internal/infrastructure/db/mongo"
	redisdb "github.com/cortexbuild/platform/internal/infrastructure/db/redis"
	"github.com/cortexbuild/platform/internal/infrastructure/queue"
	"github.com/cortexbuild/platform/internal/pkg/config"
	"github.com/cortexbuild/platform/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Misconfiguration is fatal: better to refuse to start than to serve
	// with an unverifiable signing secret or a broken quota.
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Backing stores ---
	var (
		users ports.UserRepository
		db    *mongo.Database
		rdb   *redis.Client
	)
	if cfg.DemoMode {
		users = memory.NewUserRepository(memory.SeedDemo()...)
		log.Info().Msg("demo mode: in-memory user store seeded")
	} else {
		client, database, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		db = database
		repo := mongodb.NewUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo index setup failed")
		}
		users = repo
	}

	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = rdb.Close()
		}()
	}

	// --- Audit trail ---
	var auditRepo ports.AuditRepository
	if db != nil {
		auditRepo = mongodb.NewAuditRepository(db)
	}
	dispatcher := queue.NewDispatcher(0, service.NewAuditService(auditRepo, log), log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Cfg:   cfg,
		Log:   log,
		Users: users,
		Mongo: db,
		Redis: rdb,
		Audit: dispatcher,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
