//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("VILLAS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VILLAS_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, redisURL(t))
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := "villas:test:" + uuid.NewString()
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get on missing key: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get after Set = %q, hit=%v err=%v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Error("NewRedisCache() expected error for unreachable server")
	}
	if _, err := NewRedisCache(ctx, "not a url"); err == nil {
		t.Error("NewRedisCache() expected error for invalid url")
	}
}
