package utils

import (
	"context"
	"sync"
	"time"

	"aftervisit/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	authCacheClient *redis.Client
	authCacheOnce   sync.Once
)

// GetAuthCacheClient returns the Redis client used for caching verified token hashes,
// or nil when Redis is not configured or unreachable. Callers must treat nil as
// "no cache" and verify tokens directly.
func GetAuthCacheClient() *redis.Client {
	authCacheOnce.Do(func() {
		if config.AppConfig.RedisAddr == "" {
			return
		}
		client := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisAuthDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			GetLogger().Warn("Redis unavailable, verified-token cache disabled", zap.Error(err))
			return
		}
		authCacheClient = client
	})
	return authCacheClient
}
