package events_test

import (
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/events"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func miniredisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func readEvents(t *testing.T, client *redis.Client) []events.VerificationEvent {
	t.Helper()

	msgs, err := client.XRange(context.Background(), events.StreamName, "-", "+").Result()
	require.NoError(t, err)

	out := make([]events.VerificationEvent, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		require.True(t, ok, "event field missing from %v", msg.Values)

		var event events.VerificationEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &event))
		out = append(out, event)
	}
	return out
}

func TestPublisher_WritesToStream(t *testing.T) {
	t.Parallel()

	client := miniredisClient(t)
	pub := events.NewPublisher(client, logger.NewNop(), func() { t.Error("unexpected publish failure") })

	require.NoError(t, pub.Publish(context.Background(), events.VerificationEvent{
		EventType: events.VerificationCompleted,
		URL:       "https://example.com",
		IsValid:   true,
	}))
	pub.PublishAsync(events.VerificationEvent{URL: "https://example.org"})
	pub.Wait()

	got := readEvents(t, client)
	require.Len(t, got, 2)

	assert.Equal(t, "https://example.com", got[0].URL)
	assert.True(t, got[0].IsValid)
	assert.Equal(t, "https://example.org", got[1].URL)
	for _, event := range got {
		assert.NotEqual(t, uuid.Nil, event.EventID)
		assert.False(t, event.Timestamp.IsZero())
	}
}

func TestNewPublisher_NilClient(t *testing.T) {
	t.Parallel()

	assert.Nil(t, events.NewPublisher(nil, nil, nil))
}

func TestPublisher_NilReceiverIsNoOp(t *testing.T) {
	t.Parallel()

	var pub *events.Publisher
	require.NoError(t, pub.Publish(context.Background(), events.VerificationEvent{URL: "https://x"}))
	assert.NotPanics(t, func() {
		pub.PublishAsync(events.VerificationEvent{})
		pub.Wait()
	})
}

func TestPublisher_UnreachableRedis(t *testing.T) {
	t.Parallel()

	var failures atomic.Int32
	pub := events.NewPublisher(unreachableClient(t), nil, func() { failures.Add(1) })

	err := pub.Publish(context.Background(), events.VerificationEvent{URL: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to stream")

	pub.PublishAsync(events.VerificationEvent{URL: "https://y"})
	pub.Wait()
	assert.Equal(t, int32(2), failures.Load())
}

func TestNewVerificationEvent(t *testing.T) {
	t.Parallel()

	resp := &models.VerificationResponse{
		URL: "https://example.com",
		Validation: models.ValidationResult{
			IsValid:  false,
			Warnings: []string{"Missing og:title tag", "Missing og:description tag"},
			Errors:   []string{"Invalid image URL"},
		},
	}

	event := events.NewVerificationEvent(resp)
	assert.Equal(t, events.VerificationCompleted, event.EventType)
	assert.Equal(t, "https://example.com", event.URL)
	assert.False(t, event.IsValid)
	assert.Equal(t, 2, event.WarningCount)
	assert.Equal(t, 1, event.ErrorCount)
	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.False(t, event.Timestamp.IsZero())
}
