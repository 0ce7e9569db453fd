package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matchday/backend/internal/metrics"
	"matchday/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis cache configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache caches computed accuracy stats. Dispatcher responses are never
// cached; accuracy is derived data and tolerates TTL staleness.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", client.Options().Addr).Msg("Redis cache connected")

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func accuracyKey(telegramID int64) string {
	return fmt.Sprintf("accuracy:%d", telegramID)
}

// GetAccuracy returns cached accuracy stats if present.
// A nil receiver is a cache miss, so callers can run without Redis.
func (c *RedisCache) GetAccuracy(ctx context.Context, telegramID int64) (*models.AccuracyStats, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, accuracyKey(telegramID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Int64("telegram_id", telegramID).Msg("Accuracy cache read failed")
		}
		metrics.RecordCacheMiss()
		return nil, false
	}

	var stats models.AccuracyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return &stats, true
}

// SetAccuracy stores accuracy stats with the configured TTL
func (c *RedisCache) SetAccuracy(ctx context.Context, telegramID int64, stats *models.AccuracyStats) {
	if c == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, accuracyKey(telegramID), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Int64("telegram_id", telegramID).Msg("Accuracy cache write failed")
	}
}

// InvalidateAccuracy drops the cached stats after a ledger write
func (c *RedisCache) InvalidateAccuracy(ctx context.Context, telegramID int64) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, accuracyKey(telegramID)).Err(); err != nil {
		log.Warn().Err(err).Int64("telegram_id", telegramID).Msg("Accuracy cache invalidation failed")
	}
}
