package savedjobs

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
	"kesnek-mobile/internal/store"
)

type stubFetcher struct {
	jobs []domain.SavedJob
	err  error
}

func (f *stubFetcher) SavedJobs(_ context.Context) ([]domain.SavedJob, error) {
	return f.jobs, f.err
}

func TestService_SyncWritesCache(t *testing.T) {
	kv := store.NewMemoryKV()
	svc := NewService(&stubFetcher{jobs: []domain.SavedJob{{ID: "s1", JobID: "j1", Title: "Cook"}}}, kv, zap.NewNop())

	if err := svc.SyncWithBackend(context.Background(), func(apply func() error) error { return apply() }); err != nil {
		t.Fatalf("sync: %v", err)
	}
	jobs, err := svc.Cached(context.Background())
	if err != nil || len(jobs) != 1 || jobs[0].Title != "Cook" {
		t.Fatalf("unexpected cache: %+v,%v", jobs, err)
	}
}

func TestService_SyncDiscardsStaleResult(t *testing.T) {
	kv := store.NewMemoryKV()
	svc := NewService(&stubFetcher{jobs: []domain.SavedJob{{ID: "s1"}}}, kv, zap.NewNop())

	errChanged := errors.New("session changed")
	err := svc.SyncWithBackend(context.Background(), func(func() error) error { return errChanged })
	if !errors.Is(err, errChanged) {
		t.Fatalf("expected stale error, got %v", err)
	}
	if _, ok, _ := kv.Get(context.Background(), store.KeySavedJobs); ok {
		t.Fatalf("stale result must not be written")
	}
}

func TestService_SyncFetchError(t *testing.T) {
	kv := store.NewMemoryKV()
	_ = kv.Set(context.Background(), store.KeySavedJobs, `[{"id":"old"}]`)
	svc := NewService(&stubFetcher{err: errors.New("offline")}, kv, zap.NewNop())

	if err := svc.SyncWithBackend(context.Background(), nil); err == nil {
		t.Fatalf("expected fetch error")
	}
	jobs, _ := svc.Cached(context.Background())
	if len(jobs) != 1 || jobs[0].ID != "old" {
		t.Fatalf("previous cache must survive a failed sync, got %+v", jobs)
	}
}

func TestService_CachedEmptyAndCorrupt(t *testing.T) {
	kv := store.NewMemoryKV()
	svc := NewService(&stubFetcher{}, kv, nil)

	jobs, err := svc.Cached(context.Background())
	if err != nil || jobs != nil {
		t.Fatalf("expected empty cache, got %+v,%v", jobs, err)
	}
	_ = kv.Set(context.Background(), store.KeySavedJobs, "nope")
	jobs, err = svc.Cached(context.Background())
	if err != nil || jobs != nil {
		t.Fatalf("expected corrupt cache treated as empty, got %+v,%v", jobs, err)
	}
}
