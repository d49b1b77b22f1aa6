package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/talk-assistant/internal/domain/entities"
)

const redisKeyPrefix = "talk-assistant:recording:"

// RedisStore keeps snapshots as JSON strings with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(recordingID uuid.UUID) string {
	return redisKeyPrefix + recordingID.String() + ":snapshot"
}

// Save writes the snapshot and refreshes its TTL
func (s *RedisStore) Save(ctx context.Context, snap *entities.RecordingSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load reads the latest snapshot
func (s *RedisStore) Load(ctx context.Context, recordingID uuid.UUID) (*entities.RecordingSnapshot, error) {
	data, err := s.client.Get(ctx, redisKey(recordingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return decode(data)
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
