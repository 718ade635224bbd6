package config

import (
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis returns nil when REDIS_ADDR is unset; the recommendation cache
// degrades to database-only lookups in that case.
func InitRedis(logger *zap.SugaredLogger) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Info("REDIS_ADDR not set, recommendation hot cache disabled")
		return nil
	}

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})
}
