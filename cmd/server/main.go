package main

import (
	"context"
	"log"
	"time"

	"anoa.com/confessionwall/internal/config"
	"anoa.com/confessionwall/internal/logger"
	"anoa.com/confessionwall/internal/server"
	"anoa.com/confessionwall/pkg/database"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)

	logger.Log.Info("server starting", zap.String("port", cfg.Port))
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

// connectRedis returns nil when redis is not configured or unreachable;
// the server then runs without the realtime change feed.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		logger.Log.Warn("REDIS_URL not set, change feed disabled")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Log.Warn("invalid REDIS_URL, change feed disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unreachable, change feed disabled", zap.Error(err))
		return nil
	}

	return client
}
