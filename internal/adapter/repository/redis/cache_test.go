package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "balance:company:c-1:acc-1", `{"bakiye":"-600"}`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "balance:company:c-1:acc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if val != `{"bakiye":"-600"}` {
		t.Fatalf("unexpected value: %s", val)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key"); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestCacheKeysArePrefixed(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !mr.Exists("cariledger:key") {
		t.Fatal("expected prefixed key in redis")
	}
}
