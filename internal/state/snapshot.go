package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ravebox/discover/internal/store"

	"github.com/redis/go-redis/v9"
)

const snapshotPrefix = "ravebox:state:"

// RedisSnapshot persists store state for one session as JSON
type RedisSnapshot struct {
	redisClient KV
	key         string
	ttl         time.Duration
}

func NewRedisSnapshot(redisClient KV, session string, ttl time.Duration) *RedisSnapshot {
	return &RedisSnapshot{
		redisClient: redisClient,
		key:         snapshotPrefix + session,
		ttl:         ttl,
	}
}

func (s *RedisSnapshot) Save(ctx context.Context, st store.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state snapshot: %w", err)
	}

	if err := s.redisClient.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state snapshot %s: %w", s.key, err)
	}
	return nil
}

// Load returns the saved state, and false when there is none
func (s *RedisSnapshot) Load(ctx context.Context) (store.State, bool, error) {
	data, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.State{}, false, nil
		}
		return store.State{}, false, fmt.Errorf("failed to load state snapshot %s: %w", s.key, err)
	}

	var st store.State
	if err := json.Unmarshal(data, &st); err != nil {
		return store.State{}, false, fmt.Errorf("failed to decode state snapshot %s: %w", s.key, err)
	}
	return st, true, nil
}
