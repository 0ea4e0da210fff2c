package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Integration test against a real Redis. Skipped unless TEST_REDIS_URL is set,
// e.g. TEST_REDIS_URL=redis://localhost:6379/15
func newTestCache(t *testing.T) (TimelineCache, *redis.Client) {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis integration test")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}

	t.Cleanup(func() {
		client.Del(context.Background(), TimelineKey)
		client.Close()
	})
	client.Del(context.Background(), TimelineKey)

	return NewTimelineCache(client), client
}

func TestRedisTimelineCache_AddAndGetRecent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.AddPost(ctx, 1, 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddPost(ctx, 2, 300); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddPost(ctx, 3, 200); err != nil {
		t.Fatalf("add: %v", err)
	}

	ids, err := c.GetRecent(ctx, 0)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}

	want := []int64{2, 3, 1}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestRedisTimelineCache_RemovePost(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.AddPost(ctx, 1, 100)
	c.AddPost(ctx, 2, 200)

	if err := c.RemovePost(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ids, err := c.GetRecent(ctx, 0)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("ids = %v, want [2]", ids)
	}
}

func TestRedisTimelineCache_WarmAndExists(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	exists, err := c.Exists(ctx)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("timeline should not exist before warm")
	}

	if err := c.Warm(ctx, []PostScore{
		{PostID: 1, Timestamp: 100},
		{PostID: 2, Timestamp: 200},
	}); err != nil {
		t.Fatalf("warm: %v", err)
	}

	exists, err = c.Exists(ctx)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("timeline should exist after warm")
	}

	size, err := c.Size(ctx)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 2 {
		t.Errorf("size = %d, want 2", size)
	}
}

func TestRedisTimelineCache_GetRecentLimit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		c.AddPost(ctx, i, i*100)
	}

	ids, err := c.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 4 {
		t.Errorf("ids = %v, want [5 4]", ids)
	}
}
