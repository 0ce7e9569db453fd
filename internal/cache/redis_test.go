package cache

import (
	"context"
	"testing"
	"time"

	"matchday/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The service runs without Redis; a nil cache behaves as a permanent miss.
func TestNilCacheSafe(t *testing.T) {
	var c *RedisCache
	ctx := context.Background()

	stats, ok := c.GetAccuracy(ctx, 123)
	assert.False(t, ok)
	assert.Nil(t, stats)

	// Writes and invalidations are no-ops
	c.SetAccuracy(ctx, 123, &models.AccuracyStats{})
	c.InvalidateAccuracy(ctx, 123)
}

func TestAccuracyKey(t *testing.T) {
	assert.Equal(t, "accuracy:12345", accuracyKey(12345))
}

func TestAccuracyRoundTrip(t *testing.T) {
	c, err := NewRedisCache(Config{
		Host: "localhost",
		Port: "6379",
		TTL:  time.Minute,
	})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	want := &models.AccuracyStats{Total: 10, Resolved: 8, Correct: 6, Ratio: 0.75, HasData: true}

	c.SetAccuracy(ctx, 98765, want)

	got, ok := c.GetAccuracy(ctx, 98765)
	require.True(t, ok)
	assert.Equal(t, want, got)

	c.InvalidateAccuracy(ctx, 98765)
	_, ok = c.GetAccuracy(ctx, 98765)
	assert.False(t, ok, "Invalidated entry must miss")
}
