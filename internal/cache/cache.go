// Package cache wraps Redis behind an injectable store so derived grading
// views can be cached and invalidated without services reaching for an
// ambient client.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// OverviewKey is the cache key for a grading group's scored overview.
func OverviewKey(groupID uint) string {
	return fmt.Sprintf("grading:overview:%d", groupID)
}

// Store is the read-through cache used for derived grading views. Writes to
// submissions, sessions or grade items must invalidate the owning group's
// overview key; that is the whole invalidation contract.
type Store interface {
	GetJSON(ctx context.Context, key string, target interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore builds a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

func (s *redisStore) GetJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	payload, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		// A stale or corrupt entry behaves like a miss.
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false, nil
	}

	return true, nil
}

func (s *redisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, payload, ttl).Err()
}

func (s *redisStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return s.client.Del(ctx, keys...).Err()
}

type noopStore struct{}

// NewNoopStore returns a Store that caches nothing. Used when Redis is not
// configured.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

func (noopStore) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopStore) Invalidate(context.Context, ...string) error { return nil }
