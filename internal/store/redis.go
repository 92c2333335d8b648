package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache keeps recently fetched page HTML in Redis so repeated selector
// tests against the same URL do not re-hit the target site.
type PageCache struct {
	client *redis.Client
}

func NewPageCache(addr string) *PageCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &PageCache{client: rdb}
}

func (c *PageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *PageCache) Close() error {
	return c.client.Close()
}

// Put stores page HTML with a TTL.
func (c *PageCache) Put(ctx context.Context, url, html string, ttl time.Duration) error {
	return c.client.Set(ctx, pageKey(url), html, ttl).Err()
}

// Get returns cached HTML for a URL. The second return value reports
// whether the page was present.
func (c *PageCache) Get(ctx context.Context, url string) (string, bool, error) {
	val, err := c.client.Get(ctx, pageKey(url)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func pageKey(url string) string {
	return fmt.Sprintf("page:%s", url)
}
