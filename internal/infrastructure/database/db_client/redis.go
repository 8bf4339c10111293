package db_client

import (
	"context"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/pkg/util/repeat"
	"github.com/redis/go-redis/v9"
	"time"
)

type RedisClient struct {
	cfg         config.Redis
	maxAttempts int
}

func NewRedisClient(cfg config.Redis, maxAttempts int) *RedisClient {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &RedisClient{cfg: cfg, maxAttempts: maxAttempts}
}

// Connect creates the client and waits until the server answers a PING.
func (c *RedisClient) Connect() (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Addr,
		Password: c.cfg.Password,
		DB:       c.cfg.DB,
	})

	err := repeat.Repeat(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx).Err()
	}, c.maxAttempts, 5*time.Second)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", c.cfg.Addr, err)
	}

	return rdb, nil
}
