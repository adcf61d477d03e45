package coupon

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const listCacheKey = "promo:coupons:all"

// Cache keeps the full coupon list in Redis so evaluation requests do not hit
// Postgres on every call. A nil client disables caching entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a coupon list cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetList returns the cached coupon list and whether the key existed.
func (c *Cache) GetList(ctx context.Context) ([]Rule, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

// SetList stores the coupon list with the configured TTL.
func (c *Cache) SetList(ctx context.Context, rules []Rule) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached list. Called after every coupon write.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, listCacheKey).Err()
}
