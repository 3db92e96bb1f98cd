package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix  = "heatmap:user:"
	defaultCacheTTL = 10 * time.Minute
)

// ErrCacheMiss is returned when no cached heatmap exists for a key.
var ErrCacheMiss = errors.New("heatmap cache miss")

// Cache is a read-through cache for computed heatmaps. When Redis is
// unreachable the cache degrades to a pass-through: every read misses and
// writes are dropped, so the service keeps answering from the database.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	enabled bool
}

// NewCache connects to Redis at addr. An empty addr or a failed ping disables
// caching rather than failing startup.
func NewCache(addr string) *Cache {
	c := &Cache{ttl: defaultCacheTTL}
	if addr == "" {
		log.Println("[history] Redis address not configured, heatmap caching disabled")
		return c
	}

	c.client = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		log.Printf("[history] Redis unreachable at %s, heatmap caching disabled: %v", addr, err)
		return c
	}

	c.enabled = true
	log.Printf("[history] Heatmap cache connected to Redis at %s", addr)
	return c
}

// Enabled reports whether the cache is backed by a live Redis connection.
func (c *Cache) Enabled() bool {
	return c.enabled
}

func cacheKey(userID, teamID string) string {
	if teamID == "" {
		return cacheKeyPrefix + userID
	}
	return fmt.Sprintf("%s%s:team:%s", cacheKeyPrefix, userID, teamID)
}

// GetOrCompute returns the cached heatmap for the key, computing and storing
// it on a miss. Concurrent requests for the same key share one computation.
func (c *Cache) GetOrCompute(ctx context.Context, userID, teamID string, compute func(context.Context) (*HeatmapResponse, error)) (*HeatmapResponse, error) {
	key := cacheKey(userID, teamID)

	if resp, err := c.get(ctx, key); err == nil {
		resp.Cached = true
		return resp, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[history] Cache read failed for %s (falling back to store): %v", key, err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		resp, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*HeatmapResponse), nil
}

func (c *Cache) get(ctx context.Context, key string) (*HeatmapResponse, error) {
	if !c.enabled {
		return nil, ErrCacheMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var resp HeatmapResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &resp, nil
}

func (c *Cache) set(ctx context.Context, key string, resp *HeatmapResponse) {
	if !c.enabled {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[history] Failed to encode heatmap for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[history] Cache write failed for %s: %v", key, err)
	}
}

// Invalidate removes every cached heatmap for the user, including team-scoped
// variants.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if !c.enabled {
		return
	}
	c.deleteByPattern(ctx, cacheKeyPrefix+userID+"*")
}

// Flush removes every cached heatmap. Used after a cleanup run rewrites
// history in bulk.
func (c *Cache) Flush(ctx context.Context) {
	if !c.enabled {
		return
	}
	c.deleteByPattern(ctx, cacheKeyPrefix+"*")
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[history] Cache scan failed for %s: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[history] Cache delete failed for %s: %v", pattern, err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
