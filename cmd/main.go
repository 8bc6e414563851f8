package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatrelay/backend/internal/api/handler"
	"chatrelay/backend/internal/chathub"
	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/jobs"
	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/retention"
	"chatrelay/backend/internal/storage"
)

func setupDependencies(cfg config.Config, log zerolog.Logger) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	// 2. Redis (job queue broker)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	// 3. Migrations
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	cfg := config.Load()
	log := cfg.NewLogger()
	log.Info().Msg("starting ChatRelay backend")

	// 1. Dependencies
	db, rdb := setupDependencies(cfg, log)
	store := storage.NewService(db, log)

	// 2. Chat engine
	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, log)

	// 3. Deferred job runner
	runner := jobs.NewRedisRunner(rdb, cfg.JobQueueKey, log)
	runner.Register(jobs.KindLogMessage, jobs.LogMessageHandler(log))
	runner.Start()
	defer runner.Stop()

	// 4. Retention sweep
	sweeper := retention.New(store, cfg.RetentionWindow, cfg.SweepSpec, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule retention sweep")
	}
	defer sweeper.Stop()

	// 5. Gin routing
	r := gin.Default()
	h := handler.NewHandler(registry, dispatcher, store, runner, cfg.RoomName, []byte(cfg.JWTSecret), log)

	r.GET("/token", h.IssueToken)       // signed identity for named sessions
	r.GET("/ws", h.ServeWebSocket)      // WebSocket upgrade
	r.GET("/messages", h.RecentMessages)
	r.GET("/healthz", h.Health)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
