package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewRedis connects to the configured Redis server. Returns nil when the
// server can't be reached, callers degrade to in-process fallbacks
// instead of refusing to start.
func NewRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("Redis is unreachable, falling back to in-process rate limiting", zap.Error(err))
		return nil
	}

	return client
}
