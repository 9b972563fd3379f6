package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrStorage envuelve cualquier falla de E/S del almacenamiento.
var ErrStorage = errors.New("storage failure")

// KV es el almacenamiento clave-valor durable de la instalacion.
// No hay transacciones entre claves: una escritura multiple puede quedar a medias.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	ListKeys(ctx context.Context) ([]string, error)
}

func storageErr(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
	}
	return fmt.Errorf("%w: %s %q: %w", ErrStorage, op, key, err)
}

// MemoryKV no sobrevive reinicios; sirve para tests y ejecuciones efimeras.
type MemoryKV struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storageErr("get", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("set", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryKV) Remove(ctx context.Context, key string) error {
	return m.RemoveMany(ctx, []string{key})
}

func (m *MemoryKV) RemoveMany(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("remove", "", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryKV) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", "", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
