package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/config"
	"github.com/datkingvn/pvoil-sub000/internal/handlers/api"
	"github.com/datkingvn/pvoil-sub000/internal/random"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/inventory"
	"github.com/datkingvn/pvoil-sub000/internal/services/obstacle"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/datkingvn/pvoil-sub000/internal/services/speed"
	"github.com/datkingvn/pvoil-sub000/internal/services/summit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Log)
	defer logger.Sync()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	// Initialize repositories
	store, err := document.NewRedis(&document.Config{
		RedisClient: redisClient,
		MaxRetries:  cfg.Redis.TxMaxRetries,
	})
	if err != nil {
		logger.Fatal("failed to create document store", zap.Error(err))
	}

	clk := &clock.DefaultClock{}
	ids := uuid.New()

	bus, err := events.NewRedis(&events.Config{
		RedisClient: redisClient,
		Clock:       clk,
	})
	if err != nil {
		logger.Fatal("failed to create event bus", zap.Error(err))
	}

	// Initialize services
	registrySvc, err := registry.New(&registry.Config{
		Store:         store,
		Publisher:     bus,
		UUIDGenerator: ids,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to create registry service", zap.Error(err))
	}

	inventorySvc, err := inventory.New(&inventory.Config{
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create inventory service", zap.Error(err))
	}

	obstacleSvc, err := obstacle.New(&obstacle.Config{
		AnswerSeconds: cfg.Game.ObstacleAnswerSeconds,
		Store:         store,
		Publisher:     bus,
		Clock:         clk,
		UUIDGenerator: ids,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to create obstacle engine", zap.Error(err))
	}

	speedSvc, err := speed.New(&speed.Config{
		QuestionSeconds: cfg.Game.SpeedDefaultSeconds,
		Store:           store,
		Publisher:       bus,
		Clock:           clk,
		UUIDGenerator:   ids,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("failed to create speed engine", zap.Error(err))
	}

	summitSvc, err := summit.New(&summit.Config{
		BuzzerSeconds: cfg.Game.SummitBuzzerSeconds,
		TeamsToFinish: cfg.Game.SummitTeamsToFinish,
		Store:         store,
		Publisher:     bus,
		Clock:         clk,
		UUIDGenerator: ids,
		Picker:        random.New(&random.Config{Seed: cfg.Game.RandomSeed}),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to create summit engine", zap.Error(err))
	}

	if !cfg.Log.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := api.New(&api.Config{
		Obstacle:   obstacleSvc,
		Speed:      speedSvc,
		Summit:     summitSvc,
		Registry:   registrySvc,
		Inventory:  inventorySvc,
		Subscriber: bus,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to create api server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     server.Handler(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
