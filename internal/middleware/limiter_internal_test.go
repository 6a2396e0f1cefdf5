package middleware //nolint:testpackage // drives the limiter clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_WindowExpires(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("ip"))
	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("ip"))
}

func TestLimiter_SweepDropsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(30 * time.Second)
	l.Allow("b")
	now = now.Add(40 * time.Second)
	l.sweep()

	assert.NotContains(t, l.entries, "a")
	assert.Contains(t, l.entries, "b")
}
