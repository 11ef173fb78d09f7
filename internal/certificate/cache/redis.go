// Package cache memoizes public verification lookups by normalized code.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"romportal/internal/certificate/models"
)

const (
	verifyKeyPrefix = "verify:"

	DefaultTTL = 5 * time.Minute
)

// RedisCache stores verification results as JSON under verify:<code>.
// Misses are cached too; writes to a certificate invalidate its code.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisCache)

// WithRedisTTL sets the entry lifetime. Non-positive values keep the default.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, code string) (*models.VerificationResult, bool, error) {
	raw, err := c.client.Get(ctx, verifyKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get verification %s: %w", code, err)
	}
	var result models.VerificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("decode verification %s: %w", code, err)
	}
	return &result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, code string, result *models.VerificationResult) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode verification %s: %w", code, err)
	}
	if err := c.client.Set(ctx, verifyKeyPrefix+code, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set verification %s: %w", code, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != "" {
			keys = append(keys, verifyKeyPrefix+code)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate verifications: %w", err)
	}
	return nil
}
