package services

import (
	"context"
	"fmt"
	"time"

	"haulgo/internal/utils"
	"haulgo/pkg/logger"
)

// CacheService is the redis-backed surface the rest of the system leans on:
// event fan-out for the notification emitter, request counters for the
// distributed rate limit, and a liveness probe for the health endpoint.
type CacheService interface {
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
	Publish(ctx context.Context, channel string, message interface{}) error
	Ping(ctx context.Context) error
}

// RedisStore is the subset of the Redis client the cache service consumes.
type RedisStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	SetExpire(ctx context.Context, key string, expiration time.Duration) error
	Publish(ctx context.Context, channel string, message interface{}) error
}

type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Count      int64         `json:"count"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

type cacheService struct {
	store     RedisStore
	logger    *logger.Logger
	keyPrefix string
}

func NewCacheService(store RedisStore, logger *logger.Logger, keyPrefix string) CacheService {
	return &cacheService{
		store:     store,
		logger:    logger,
		keyPrefix: keyPrefix,
	}
}

// CheckRateLimit counts requests under key within a fixed window. The
// counter lives in redis, so the budget holds across instances.
func (s *cacheService) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	rateLimitKey := s.buildKey(utils.CacheRateLimitPrefix + key)

	count, err := s.store.Increment(ctx, rateLimitKey)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		s.store.SetExpire(ctx, rateLimitKey, window)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	retryAfter := time.Duration(0)
	if count > limit {
		retryAfter = window
	}

	return &RateLimitResult{
		Allowed:    count <= limit,
		Count:      count,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}

func (s *cacheService) Publish(ctx context.Context, channel string, message interface{}) error {
	if err := s.store.Publish(ctx, channel, message); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

func (s *cacheService) Ping(ctx context.Context) error {
	_, err := s.store.Exists(ctx, s.buildKey("ping"))
	return err
}

func (s *cacheService) buildKey(key string) string {
	if s.keyPrefix != "" {
		return fmt.Sprintf("%s:%s", s.keyPrefix, key)
	}
	return key
}
