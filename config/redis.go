package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient carries routing version notifications between processes. Nil when unset.
var RedisClient *redis.Client

// InitRedis builds RedisClient from REDIS_ADDR, REDIS_PASS and REDIS_DB.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       db,
	})
}

// RedisChannel is the pub/sub channel for routing versions, REDIS_CHANNEL or fallback.
func RedisChannel(fallback string) string {
	return GetEnv("REDIS_CHANNEL", fallback)
}

// RedisCtx bounds a single redis round trip.
func RedisCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}
