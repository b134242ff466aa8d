package common

import (
	"context"
	"fmt"
	"time"

	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from config. A failed ping is logged, not returned;
// the pool keeps reconnecting and the health check reports Redis as down meanwhile.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	port := cfg.Port
	if port == "" {
		port = "6379"
	}
	addr := fmt.Sprintf("%s:%s", cfg.Host, port)
	log := logging.WithComponent("redis")
	log.Infow("Initializing Redis client", "addr", addr, "db", cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("Failed to ping Redis", "addr", addr, "error", err)
		return client
	}

	log.Infow("Connected to Redis", "addr", addr)
	return client
}

// NewCache returns the Redis cache when Redis is configured and the in-memory one otherwise. m may be nil.
func NewCache(cfg *config.Config, m *metrics.MetricsRegistry) (CacheInterface, *redis.Client) {
	if !cfg.RedisEnabled() {
		return NewCacheService(5*time.Minute, 10*time.Minute, m), nil
	}
	client := NewRedisClient(cfg.Redis)
	return NewRedisCacheService(client), client
}
