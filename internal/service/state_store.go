package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nmezhoud/healthlink/pkg/database"
	"github.com/redis/go-redis/v9"
)

// redisStateStore keeps issued OAuth state tokens in Redis with a short TTL.
// Tokens are server-issued nonces, single-use: Consume deletes on read.
type redisStateStore struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewStateStore creates a Redis-backed state store
func NewStateStore(redis *database.Redis, ttl time.Duration) StateStore {
	return &redisStateStore{redis: redis, ttl: ttl}
}

// Issue generates and stores a new state token
func (s *redisStateStore) Issue(ctx context.Context) (string, error) {
	state := uuid.New().String()
	key := stateKey(state)

	if err := s.redis.Client.Set(ctx, key, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store state token: %w", err)
	}

	return state, nil
}

// Consume redeems a state token. The token is deleted atomically so a
// replayed callback cannot reuse it.
func (s *redisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	key := stateKey(state)

	_, err := s.redis.Client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to redeem state token: %w", err)
	}

	return true, nil
}

func stateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}
