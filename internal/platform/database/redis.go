package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB is the process-wide Redis client, set by InitRedis.
var RDB *redis.Client

// InitRedis connects to Redis and verifies the connection with PING.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cannot reach redis at %s: %w", cfg.Address, err)
	}

	RDB = rdb
	return rdb, nil
}
