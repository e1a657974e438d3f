// Package state keeps process state in Redis: indexer progress and
// snapshots of the application store.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the subset of the Redis client used here
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type ProgressManager interface {
	GetLastIndexed(ctx context.Context, category string) (time.Time, error)
	SetLastIndexed(ctx context.Context, category string, at time.Time) error
}

type redisProgressManager struct {
	redisClient KV
	keyPrefix   string
}

func NewRedisProgressManager(redisClient KV) ProgressManager {
	return &redisProgressManager{
		redisClient: redisClient,
		keyPrefix:   "ravebox:progress:discover:",
	}
}

// GetLastIndexed returns the zero time for a category never indexed
func (s *redisProgressManager) GetLastIndexed(ctx context.Context, category string) (time.Time, error) {
	key := s.keyPrefix + category
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last indexed time for category %s: %w", category, err)
	}

	at, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last indexed time for category %s: %w", category, err)
	}

	return at, nil
}

func (s *redisProgressManager) SetLastIndexed(ctx context.Context, category string, at time.Time) error {
	key := s.keyPrefix + category
	err := s.redisClient.Set(ctx, key, at.UTC().Format(time.RFC3339), 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set last indexed time for category %s: %w", category, err)
	}
	return nil
}
