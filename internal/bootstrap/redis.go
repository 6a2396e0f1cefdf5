package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/events"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/metrics"
)

const redisPingTimeout = 2 * time.Second

// EventStream is the optional Redis-backed event publisher. The zero value
// is disabled: Publisher and Ping are nil and Close does nothing.
type EventStream struct {
	Publisher *events.Publisher
	Ping      func() error
	client    *redis.Client
}

// Close drains pending publishes and closes the connection.
func (s EventStream) Close() {
	s.Publisher.Wait()
	if s.client != nil {
		_ = s.client.Close()
	}
}

// SetupEventPublisher connects to Redis when enabled. An unreachable Redis
// disables events instead of failing startup.
func SetupEventPublisher(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) EventStream {
	if !cfg.Redis.Enabled {
		return EventStream{}
	}

	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis not available, events disabled", logger.Error(err))
		return EventStream{}
	}

	log.Info("Event publisher initialized",
		logger.String("redis_address", cfg.Redis.Address),
		logger.String("stream", events.StreamName),
	)

	return EventStream{
		Publisher: events.NewPublisher(client, log, m.EventsPublishFailuresTotal.Inc),
		Ping: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
			defer cancel()
			return client.Ping(pingCtx).Err()
		},
		client: client,
	}
}
