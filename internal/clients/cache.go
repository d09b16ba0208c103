package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultLookupTTL is how long enrichment lookups stay cached.
// Customer and property records change rarely relative to loan reads.
const DefaultLookupTTL = 5 * time.Minute

// CachedCustomerClient wraps a CustomerClient with a Redis cache.
// Only positive lookups are cached; absence and errors always go to
// the inner client. Cache failures fall through silently.
type CachedCustomerClient struct {
	Inner CustomerClient
	Rdb   *redis.Client
	TTL   time.Duration
}

func (c *CachedCustomerClient) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	key := fmt.Sprintf("lookup:customer:%s", id)
	var cached Customer
	if cacheGet(ctx, c.Rdb, key, &cached) {
		return &cached, nil
	}
	customer, err := c.Inner.GetCustomer(ctx, id)
	if err != nil || customer == nil {
		return customer, err
	}
	cacheSet(ctx, c.Rdb, key, customer, c.ttl())
	return customer, nil
}

func (c *CachedCustomerClient) GetCustomerCredit(ctx context.Context, id uuid.UUID) (*CustomerCredit, error) {
	return c.Inner.GetCustomerCredit(ctx, id)
}

func (c *CachedCustomerClient) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if c.Rdb != nil {
		if n, err := c.Rdb.Exists(ctx, fmt.Sprintf("lookup:customer:%s", id)).Result(); err == nil && n > 0 {
			return true, nil
		}
	}
	return c.Inner.CustomerExists(ctx, id)
}

func (c *CachedCustomerClient) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultLookupTTL
}

// CachedPropertyClient wraps a PropertyClient with a Redis cache.
type CachedPropertyClient struct {
	Inner PropertyClient
	Rdb   *redis.Client
	TTL   time.Duration
}

func (c *CachedPropertyClient) GetProperty(ctx context.Context, id uuid.UUID) (*Property, error) {
	key := fmt.Sprintf("lookup:property:%s", id)
	var cached Property
	if cacheGet(ctx, c.Rdb, key, &cached) {
		return &cached, nil
	}
	property, err := c.Inner.GetProperty(ctx, id)
	if err != nil || property == nil {
		return property, err
	}
	cacheSet(ctx, c.Rdb, key, property, c.ttl())
	return property, nil
}

func (c *CachedPropertyClient) GetPropertyAppraisal(ctx context.Context, id uuid.UUID) (*Appraisal, error) {
	return c.Inner.GetPropertyAppraisal(ctx, id)
}

func (c *CachedPropertyClient) PropertyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if c.Rdb != nil {
		if n, err := c.Rdb.Exists(ctx, fmt.Sprintf("lookup:property:%s", id)).Result(); err == nil && n > 0 {
			return true, nil
		}
	}
	return c.Inner.PropertyExists(ctx, id)
}

func (c *CachedPropertyClient) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultLookupTTL
}

func cacheGet(ctx context.Context, rdb *redis.Client, key string, out interface{}) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Dropping bad lookup cache entry")
		_, _ = rdb.Del(ctx, key).Result()
		return false
	}
	return true
}

func cacheSet(ctx context.Context, rdb *redis.Client, key string, v interface{}, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = rdb.Set(ctx, key, raw, ttl).Result()
}
