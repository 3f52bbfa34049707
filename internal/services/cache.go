package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/redis/go-redis/v9"

	"github.com/temcen/movierec/pkg/models"
)

const cacheGenerationKey = "recommendations:generation"

// RedisRecommendationCache keeps recommendation responses in Redis.
// Every new rating bumps a generation counter that is part of each key, so
// stale entries are never read again and simply expire.
type RedisRecommendationCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRecommendationCache creates a cache whose entries live for ttl
func NewRedisRecommendationCache(client redis.Cmdable, ttl time.Duration) *RedisRecommendationCache {
	return &RedisRecommendationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisRecommendationCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, cacheGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisRecommendationCache) Get(ctx context.Context, generation, userID int64, count int) (*models.RecommendationResponse, error) {
	data, err := c.client.Get(ctx, cacheKey(generation, userID, count)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp models.RecommendationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached recommendations: %w", err)
	}
	return &resp, nil
}

func (c *RedisRecommendationCache) Set(ctx context.Context, generation, userID int64, count int, resp *models.RecommendationResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(generation, userID, count), data, c.ttl).Err()
}

func (c *RedisRecommendationCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, cacheGenerationKey).Err()
}

func cacheKey(generation, userID int64, count int) string {
	return fmt.Sprintf("recommendations:%d:%d:%d", generation, userID, count)
}

// LocalRecommendationCache keeps responses in process memory for
// deployments without Redis. Its generation is private to the instance, so
// ratings recorded elsewhere only reach it through rating events.
type LocalRecommendationCache struct {
	entries    *ristretto.Cache[string, models.RecommendationResponse]
	generation atomic.Int64
	ttl        time.Duration
}

// NewLocalRecommendationCache holds at most maxEntries responses for ttl each
func NewLocalRecommendationCache(ttl time.Duration, maxEntries int64) (*LocalRecommendationCache, error) {
	entries, err := ristretto.NewCache(&ristretto.Config[string, models.RecommendationResponse]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &LocalRecommendationCache{entries: entries, ttl: ttl}, nil
}

func (c *LocalRecommendationCache) Generation(context.Context) (int64, error) {
	return c.generation.Load(), nil
}

// Get returns a copy so callers can flag it as a cache hit
func (c *LocalRecommendationCache) Get(_ context.Context, generation, userID int64, count int) (*models.RecommendationResponse, error) {
	if generation != c.generation.Load() {
		return nil, nil
	}
	resp, ok := c.entries.Get(cacheKey(generation, userID, count))
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

// Set drops results computed under a generation that has since moved on
func (c *LocalRecommendationCache) Set(_ context.Context, generation, userID int64, count int, resp *models.RecommendationResponse) error {
	if generation != c.generation.Load() {
		return nil
	}
	c.entries.SetWithTTL(cacheKey(generation, userID, count), *resp, 1, c.ttl)
	return nil
}

func (c *LocalRecommendationCache) Invalidate(context.Context) error {
	c.generation.Add(1)
	c.entries.Clear()
	return nil
}

func (c *LocalRecommendationCache) Close() {
	c.entries.Close()
}

// nopCache is used when no cache is wired
type nopCache struct{}

func (nopCache) Generation(context.Context) (int64, error) { return 0, nil }

func (nopCache) Get(context.Context, int64, int64, int) (*models.RecommendationResponse, error) {
	return nil, nil
}

func (nopCache) Set(context.Context, int64, int64, int, *models.RecommendationResponse) error {
	return nil
}

func (nopCache) Invalidate(context.Context) error { return nil }
