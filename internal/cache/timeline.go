package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TimelineKey is the Redis key for the global timeline cache. The feed is
	// global, not follow-scoped, so a single sorted set serves every reader.
	TimelineKey = "timeline:global"

	// TimelineCap is the maximum number of posts kept in the cache.
	TimelineCap = 1000

	// TimelineTTL is the TTL for the timeline cache.
	TimelineTTL = 7 * 24 * time.Hour
)

// PostScore represents a post with its creation timestamp used as the cache
// score.
type PostScore struct {
	PostID    int64
	Timestamp int64 // Unix timestamp
}

// TimelineCache defines the operations on the global timeline cache.
// Using an interface enables testing with mocks and potential future backends.
type TimelineCache interface {
	// AddPost adds a post to the timeline.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL).
	AddPost(ctx context.Context, postID, timestamp int64) error

	// RemovePost removes a post from the timeline. Uses ZREM.
	RemovePost(ctx context.Context, postID int64) error

	// GetRecent returns up to limit post IDs newest-first. limit <= 0 means
	// the whole cached timeline.
	GetRecent(ctx context.Context, limit int) ([]int64, error)

	// Warm bulk-inserts posts via pipelined ZADD + EXPIRE.
	Warm(ctx context.Context, posts []PostScore) error

	// Exists reports whether the timeline key is present. False means the
	// cache expired or was never built; callers should warm it.
	Exists(ctx context.Context) (bool, error)

	// Size returns the number of cached post ids.
	Size(ctx context.Context) (int64, error)
}

// RedisTimelineCache implements TimelineCache using a Redis sorted set.
type RedisTimelineCache struct {
	client *redis.Client
}

// NewTimelineCache creates a TimelineCache backed by Redis.
func NewTimelineCache(client *redis.Client) TimelineCache {
	return &RedisTimelineCache{client: client}
}

func (c *RedisTimelineCache) AddPost(ctx context.Context, postID, timestamp int64) error {
	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, TimelineKey, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(postID, 10),
	})

	// Trim oldest entries beyond the cap. Rank 0 is the lowest score.
	pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-TimelineCap-1))

	pipe.Expire(ctx, TimelineKey, TimelineTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TimelineCache] AddPost FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("add post to timeline: %w", err)
	}

	log.Printf("[TimelineCache] AddPost OK: post=%d timestamp=%d", postID, timestamp)
	return nil
}

func (c *RedisTimelineCache) RemovePost(ctx context.Context, postID int64) error {
	member := strconv.FormatInt(postID, 10)

	removed, err := c.client.ZRem(ctx, TimelineKey, member).Result()
	if err != nil {
		log.Printf("[TimelineCache] RemovePost FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("remove post from timeline: %w", err)
	}

	log.Printf("[TimelineCache] RemovePost OK: post=%d removed=%d", postID, removed)
	return nil
}

func (c *RedisTimelineCache) GetRecent(ctx context.Context, limit int) ([]int64, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := c.client.ZRevRange(ctx, TimelineKey, 0, stop).Result()
	if err != nil {
		log.Printf("[TimelineCache] GetRecent FAILED: err=%v", err)
		return nil, fmt.Errorf("get timeline: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, TimelineKey, TimelineTTL)

	postIDs := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
	}

	return postIDs, nil
}

func (c *RedisTimelineCache) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		log.Printf("[TimelineCache] Warm: nothing to warm")
		return nil
	}

	pipe := c.client.Pipeline()

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}
	pipe.ZAdd(ctx, TimelineKey, members...)
	pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-TimelineCap-1))
	pipe.Expire(ctx, TimelineKey, TimelineTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TimelineCache] Warm FAILED: posts=%d err=%v", len(posts), err)
		return fmt.Errorf("warm timeline: %w", err)
	}

	log.Printf("[TimelineCache] Warm OK: posts=%d", len(posts))
	return nil
}

func (c *RedisTimelineCache) Exists(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, TimelineKey).Result()
	if err != nil {
		return false, fmt.Errorf("check timeline exists: %w", err)
	}
	return exists > 0, nil
}

func (c *RedisTimelineCache) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, TimelineKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get timeline size: %w", err)
	}
	return size, nil
}
