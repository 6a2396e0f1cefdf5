// Package redis opens verified go-redis connections.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Address  string
	Password string
	DB       int
	// DialTimeout bounds the initial ping. Zero means five seconds.
	DialTimeout time.Duration
}

// ErrEmptyAddress is returned when no address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const defaultDialTimeout = 5 * time.Second

// NewClient connects and pings. The client is closed again if the ping fails.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}

	return client, nil
}
