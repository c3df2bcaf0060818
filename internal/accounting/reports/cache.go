package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

const (
	cacheVersionPrefix = "ledger:reports:version:"
	bumpChannel        = "ledger.reports.bump"
)

// Cache wraps Redis report caching with per-scope versioning. A nil Cache or
// one without a client always runs the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(scope internalShared.Scope) string {
	return cacheVersionPrefix + scope.Key()
}

// Version returns the scope's cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context, scope internalShared.Scope) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(scope)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX keeps a concurrent Bump from being overwritten.
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the scope's current version.
func (c *Cache) BuildKey(ctx context.Context, scope internalShared.Scope, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"ledger", "reports", scope.Key()}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, scope)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report of the scope and announces the new version.
func (c *Cache) Bump(ctx context.Context, scope internalShared.Scope) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey(scope)).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, scope.Key()+":"+strconv.FormatInt(ver, 10)).Err()
}
