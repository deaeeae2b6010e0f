package utils

import (
	"context"
	"log"
	"time"

	"timeswap/config"

	"github.com/go-redis/redis/v8"
)

// IdempotencyClient backs booking request replay protection.
var IdempotencyClient *redis.Client

// InitIdempotencyCache initializes the Redis client on REDIS_IDEMPOTENCY_DB.
func InitIdempotencyCache() {
	IdempotencyClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisIdempotencyDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := IdempotencyClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Idempotency): %v", err)
	}
}

// GetIdempotencyClient returns the idempotency client, connecting on first use.
func GetIdempotencyClient() *redis.Client {
	if IdempotencyClient == nil {
		InitIdempotencyCache()
	}
	return IdempotencyClient
}
