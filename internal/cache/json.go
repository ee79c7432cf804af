package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// JSON stores JSON documents in Redis. A nil client turns every read into a miss and
// every write into a no-op, so callers run uncached without special cases.
type JSON struct {
	client redis.UniversalClient
	ttl    time.Duration
	loads  singleflight.Group
}

// NewJSON constructs a cache whose entries expire after ttl.
func NewJSON(client redis.UniversalClient, ttl time.Duration) *JSON {
	return &JSON{client: client, ttl: ttl}
}

func (c *JSON) disabled() bool { return c == nil || c.client == nil }

// Get decodes the document at key into dst and reports whether it was present.
func (c *JSON) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.disabled() || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key with the cache TTL.
func (c *JSON) Set(ctx context.Context, key string, v any) error {
	if c.disabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes keys.
func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if c.disabled() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Version reads a counter used to namespace cached read models. Missing counters read as 0.
func (c *JSON) Version(ctx context.Context, key string) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	v, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Bump increments a version counter, orphaning every key built from the previous value.
func (c *JSON) Bump(ctx context.Context, key string) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	return c.client.Incr(ctx, key).Result()
}

// FetchResult describes how Fetch produced its value. CacheErr carries a failed cache
// read or write; the value is still valid when it is set.
type FetchResult struct {
	Hit      bool
	CacheErr error
}

// Fetch reads key through c, calling load on a miss and storing its result.
// Concurrent misses on the same key share one load.
func Fetch[T any](ctx context.Context, c *JSON, key string, load func(context.Context) (T, error)) (T, FetchResult, error) {
	var res FetchResult
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		res.CacheErr = err
	}
	if hit {
		res.Hit = true
		return cached, res, nil
	}
	if c.disabled() || key == "" {
		v, err := load(ctx)
		return v, res, err
	}
	shared, err, _ := c.loads.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		if werr := c.Set(ctx, key, v); werr != nil {
			res.CacheErr = errors.Join(res.CacheErr, werr)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, res, err
	}
	return shared.(T), res, nil
}
