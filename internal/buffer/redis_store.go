package buffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
)

// Redis-backed SnapshotStore; every Save refreshes the key's TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, snap state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, fmt.Sprintf(keySessionState, sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}

	return nil
}

// Load returns ok=false when the session has no cached snapshot.
func (r *RedisStore) Load(ctx context.Context, sessionID string) (state.Snapshot, bool, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(keySessionState, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return state.Snapshot{}, false, nil
	}

	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return state.Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return snap, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, fmt.Sprintf(keySessionState, sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot from redis: %w", err)
	}

	return nil
}
