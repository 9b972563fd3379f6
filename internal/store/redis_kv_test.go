package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisKV(t *testing.T, installationID string) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	kv, err := NewRedisKV(client, installationID)
	if err != nil {
		t.Fatalf("new redis kv: %v", err)
	}
	return kv, mr
}

func TestRedisKV_Contract(t *testing.T) {
	kv, _ := newTestRedisKV(t, "device-1")
	exerciseKV(t, kv)
}

func TestRedisKV_NamespacedPerInstallation(t *testing.T) {
	kv, mr := newTestRedisKV(t, "device-1")
	ctx := context.Background()
	if err := kv.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("kesnek:device-1:token")
	if err != nil || got != "t1" {
		t.Fatalf("expected namespaced key, got %q,%v", got, err)
	}

	mr.Set("kesnek:device-2:token", "other")
	keys, err := kv.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != KeyToken {
		t.Fatalf("expected only own keys, got %v", keys)
	}
}

func TestRedisKV_UnavailableIsStorageError(t *testing.T) {
	kv, mr := newTestRedisKV(t, "device-1")
	mr.Close()
	if err := kv.Set(context.Background(), KeyToken, "t1"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestNewRedisKV_Validation(t *testing.T) {
	if _, err := NewRedisKV(nil, "x"); err == nil {
		t.Fatalf("expected nil client rejected")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	if _, err := NewRedisKV(client, "  "); err == nil {
		t.Fatalf("expected empty installation id rejected")
	}
}
