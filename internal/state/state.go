package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// StateManager remembers how much of the catalog has already been enqueued
// for sync, so a rerun only picks up new entries
type StateManager interface {
	GetSyncedCount(ctx context.Context) (int, error)
	SetSyncedCount(ctx context.Context, count int) error
}

type redisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		key:         "pokedex:progress:catalog",
	}
}

func (s *redisStateManager) GetSyncedCount(ctx context.Context) (int, error) {
	val, err := s.redisClient.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get synced count: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse synced count %q: %w", val, err)
	}

	return count, nil
}

func (s *redisStateManager) SetSyncedCount(ctx context.Context, count int) error {
	if err := s.redisClient.Set(ctx, s.key, count, 0).Err(); err != nil {
		return fmt.Errorf("failed to set synced count: %w", err)
	}
	return nil
}
