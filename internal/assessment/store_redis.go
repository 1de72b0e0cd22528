package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/p-n-ai/pai-tos/internal/platform/cache"
)

const keyPrefix = "tos:assessment:"

// RedisStore keeps assessments in Dragonfly/Redis with a TTL, so any server
// replica can serve the download for a result generated on another.
type RedisStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(c *cache.Cache, ttl time.Duration) (*RedisStore, error) {
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("cache client is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %v", ttl)
	}
	return &RedisStore{cache: c, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, res *Result) error {
	if res == nil || res.ID == "" {
		return errors.New("result id is required")
	}
	if err := s.cache.SetJSON(ctx, keyPrefix+res.ID, res, s.ttl); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Result, error) {
	var res Result
	err := s.cache.GetJSON(ctx, keyPrefix+id, &res)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return &res, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
