package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// RedisSnapshotRepository keeps snapshots as JSON strings under a key prefix. Snapshots do not expire.
type RedisSnapshotRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisSnapshotRepository constructs the repository.
func NewRedisSnapshotRepository(client *redis.Client, prefix string, logger *zap.Logger) *RedisSnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSnapshotRepository{client: client, prefix: prefix, logger: logger}
}

// Load decodes the snapshot stored under key into dest.
func (r *RedisSnapshotRepository) Load(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrSnapshotNotFound
	}
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrSnapshotNotFound
		}
		return fmt.Errorf("redis get %s: %w", r.prefix+key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

// Save replaces the snapshot stored under key.
func (r *RedisSnapshotRepository) Save(ctx context.Context, key string, value interface{}) error {
	if r.client == nil {
		return errors.New("redis snapshot store is not configured")
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.prefix+key, err)
	}
	r.logger.Debug("snapshot saved", zap.String("key", r.prefix+key), zap.Int("bytes", len(payload)))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSnapshotRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
