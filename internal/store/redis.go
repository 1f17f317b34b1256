package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore is the production Store: one Redis key per record, TTL-based
// reclamation, INCR for the sequence counter.
type redisStore struct {
	rdc redis.Cmdable
}

func NewRedisStore(rdc redis.Cmdable) Store { return &redisStore{rdc: rdc} }

func (s *redisStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.rdc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("store decode %s: %w", key, err)
	}
	return true, nil
}

func (s *redisStore) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store encode %s: %w", key, err)
	}
	if err := s.rdc.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	seq, err := s.rdc.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("store incr %s: %w", key, err)
	}
	// Expiry refresh is a separate command; losing it only shortens the
	// counter's life, never its monotonicity.
	_ = s.rdc.Expire(ctx, key, ttl).Err()
	return seq, nil
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("store del: %w", err)
	}
	return nil
}

func (s *redisStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.rdc.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("store touch %s: %w", key, err)
	}
	return nil
}
