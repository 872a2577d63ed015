package redis

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	if exists {
		t.Fatal("expected first check to claim the key")
	}

	exists, existing, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if !exists {
		t.Fatal("expected second check to find the key")
	}
	if !bytes.Equal(existing, []byte("processing")) {
		t.Fatalf("expected processing placeholder, got %s", existing)
	}
}

func TestIdempotencyUpdateReplaysResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	response := []byte(`{"id":"entry-1"}`)
	if err := store.Update(ctx, "key-1", response, time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, existing, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("replay check failed: %v", err)
	}
	if !exists || !bytes.Equal(existing, response) {
		t.Fatalf("expected stored response replay, got exists=%v body=%s", exists, existing)
	}
}
