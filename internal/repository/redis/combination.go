package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/variantcatalog/internal/domain"
)

const keyPrefix = "variant:combinations:"

// CombinationCache implements repository.CombinationCache using Redis. Each
// product's combination list is stored as one JSON value with a TTL.
type CombinationCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCombinationCache creates a new Redis-backed combination cache.
func NewCombinationCache(client redis.Cmdable, ttl time.Duration) *CombinationCache {
	return &CombinationCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached combinations of productID. The boolean is false on a
// cache miss.
func (c *CombinationCache) Get(ctx context.Context, productID string) ([]domain.ProductCombination, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get combinations: %w", err)
	}

	var combinations []domain.ProductCombination
	if err := json.Unmarshal(data, &combinations); err != nil {
		return nil, false, fmt.Errorf("unmarshal combinations: %w", err)
	}
	return combinations, true, nil
}

// Set stores the combinations of productID with the configured TTL.
func (c *CombinationCache) Set(ctx context.Context, productID string, combinations []domain.ProductCombination) error {
	if combinations == nil {
		combinations = []domain.ProductCombination{}
	}
	data, err := json.Marshal(combinations)
	if err != nil {
		return fmt.Errorf("marshal combinations: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+productID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set combinations: %w", err)
	}
	return nil
}

// Invalidate drops the cached combinations of productID.
func (c *CombinationCache) Invalidate(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, keyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("redis del combinations: %w", err)
	}
	return nil
}
