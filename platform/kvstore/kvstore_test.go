package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryExpiresLazilyOnRead(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Set(ctx, "otp:42", "123456", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := store.Get(ctx, "otp:42"); !ok || v != "123456" {
		t.Fatalf("expected live value, got %q ok=%v", v, ok)
	}

	now = now.Add(time.Minute)
	if store.Len() != 1 {
		t.Fatalf("expected entry to stay until read, len=%d", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "otp:42"); ok {
		t.Fatal("expected value to be expired at exactly ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted on read, len=%d", store.Len())
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	store := NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = store.Set(ctx, "k", "v", 0)
	now = now.Add(24 * 365 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected value without ttl to persist")
	}
	_ = store.Delete(ctx, "k")
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected deleted value to be gone")
	}
}

func TestRedisStoreRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, "probe:")
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "acme.com", "1", 10*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("probe:acme.com") {
		t.Fatal("expected key to be namespaced with prefix")
	}
	if v, ok, err := store.Get(ctx, "acme.com"); err != nil || !ok || v != "1" {
		t.Fatalf("expected value 1, got %q ok=%v err=%v", v, ok, err)
	}

	mr.FastForward(11 * time.Second)
	if _, ok, err := store.Get(ctx, "acme.com"); err != nil || ok {
		t.Fatalf("expected expired key, ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss without error, ok=%v err=%v", ok, err)
	}
}
