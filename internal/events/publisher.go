package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
)

// asyncPublishTimeout bounds each PublishAsync call.
const asyncPublishTimeout = 5 * time.Second

// Publisher writes verification events to StreamName.
type Publisher struct {
	client   *redis.Client
	log      logger.Logger
	onFailed func()
	wg       sync.WaitGroup
}

// NewPublisher returns nil when client is nil; a nil *Publisher is a no-op.
// onFailed, when set, is called for every event that could not be written.
func NewPublisher(client *redis.Client, log logger.Logger, onFailed func()) *Publisher {
	if client == nil {
		return nil
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{
		client:   client,
		log:      log,
		onFailed: onFailed,
	}
}

// Publish appends event to the stream.
func (p *Publisher) Publish(ctx context.Context, event VerificationEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event": string(payload),
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		if p.onFailed != nil {
			p.onFailed()
		}
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Debug("Published verification event",
		logger.String("url", event.URL),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// PublishAsync publishes in the background. Errors are logged.
func (p *Publisher) PublishAsync(event VerificationEvent) {
	if p == nil {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("Async publish failed",
				logger.String("url", event.URL),
				logger.Error(err),
			)
		}
	}()
}

// Wait blocks until every PublishAsync call has finished.
func (p *Publisher) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}
