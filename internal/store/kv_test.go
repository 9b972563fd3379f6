package store

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key absent, got %v,%v", ok, err)
	}
	if err := kv.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := kv.Set(ctx, KeyUser, `{"id":"u1"}`); err != nil {
		t.Fatalf("set user: %v", err)
	}
	v, ok, err := kv.Get(ctx, KeyToken)
	if err != nil || !ok || v != "t1" {
		t.Fatalf("expected t1, got %q,%v,%v", v, ok, err)
	}

	keys, err := kv.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{KeyToken, KeyUser}) {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := kv.RemoveMany(ctx, []string{KeyToken, KeyUser, "never-set"}); err != nil {
		t.Fatalf("remove many: %v", err)
	}
	if err := kv.Remove(ctx, KeyToken); err != nil {
		t.Fatalf("second remove should be idempotent: %v", err)
	}
	keys, err = kv.ListKeys(ctx)
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected empty store, got %v,%v", keys, err)
	}
}

func TestMemoryKV_Contract(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKV_CanceledContext(t *testing.T) {
	kv := NewMemoryKV()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := kv.Set(ctx, "k", "v"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestFileKV_Contract(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	exerciseKV(t, kv)
}

func TestFileKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	first, err := NewFileKV(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := first.Set(ctx, KeyAccountType, "employer"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFileKV(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := second.Get(ctx, KeyAccountType)
	if err != nil || !ok || v != "employer" {
		t.Fatalf("expected persisted employer, got %q,%v,%v", v, ok, err)
	}
}

func TestFileKV_CorruptFileRecovers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	kv, err := NewFileKV(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := os.WriteFile(kv.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, ok, err := kv.Get(ctx, KeyToken); err != nil || ok {
		t.Fatalf("expected empty store after corrupt file, got ok=%v err=%v", ok, err)
	}
	moved, err := os.ReadFile(kv.Path() + corruptSuffix)
	if err != nil || string(moved) != "{not json" {
		t.Fatalf("expected corrupt document kept aside, got %q,%v", moved, err)
	}

	if err := kv.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("set after recovery: %v", err)
	}
	reopened, err := NewFileKV(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get(ctx, KeyToken)
	if err != nil || !ok || v != "t1" {
		t.Fatalf("expected t1 after reopen, got %q,%v,%v", v, ok, err)
	}
}
