package store

import (
	"context"
	"testing"
)

func TestResetIfStale(t *testing.T) {
	ctx := context.Background()

	t.Run("first launch wipes legacy keys", func(t *testing.T) {
		kv := NewMemoryKV()
		_ = kv.Set(ctx, KeyToken, "legacy")
		_ = kv.Set(ctx, "password", "plaintext")

		reset, err := ResetIfStale(ctx, kv, "2")
		if err != nil || !reset {
			t.Fatalf("expected reset, got %v,%v", reset, err)
		}
		keys, _ := kv.ListKeys(ctx)
		if len(keys) != 1 || keys[0] != KeyStorageSchema {
			t.Fatalf("expected only schema key, got %v", keys)
		}
	})

	t.Run("same schema is a no-op", func(t *testing.T) {
		kv := NewMemoryKV()
		_ = kv.Set(ctx, KeyStorageSchema, "2")
		_ = kv.Set(ctx, KeyToken, "t")

		reset, err := ResetIfStale(ctx, kv, "2")
		if err != nil || reset {
			t.Fatalf("expected no reset, got %v,%v", reset, err)
		}
		if _, ok, _ := kv.Get(ctx, KeyToken); !ok {
			t.Fatalf("token must survive")
		}
	})

	t.Run("empty schema disables reset", func(t *testing.T) {
		kv := NewMemoryKV()
		_ = kv.Set(ctx, KeyToken, "t")
		if reset, err := ResetIfStale(ctx, kv, " "); err != nil || reset {
			t.Fatalf("expected disabled, got %v,%v", reset, err)
		}
	})
}
