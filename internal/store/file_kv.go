package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

const (
	fileKVName    = "session-store.json"
	corruptSuffix = ".corrupt"
)

// FileKV persiste todas las claves en un documento JSON dentro del directorio
// de la instalacion. Cada escritura reemplaza el archivo via rename atomico.
// Un documento ilegible se aparta a session-store.json.corrupt y el store
// arranca vacio.
type FileKV struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	items  map[string]string
	loaded bool
}

func NewFileKV(dir string, logger *zap.Logger) (*FileKV, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: empty store dir", ErrStorage)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, storageErr("mkdir", dir, err)
	}
	return &FileKV{path: filepath.Join(dir, fileKVName), logger: logger}, nil
}

func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) load() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.items = make(map[string]string)
		f.loaded = true
		return nil
	}
	if err != nil {
		return storageErr("read", f.path, err)
	}
	items := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			if qerr := os.Rename(f.path, f.path+corruptSuffix); qerr != nil {
				return storageErr("decode", f.path, errors.Join(err, qerr))
			}
			f.logger.Warn("session store unreadable; moved aside",
				zap.String("path", f.path),
				zap.String("moved_to", f.path+corruptSuffix),
				zap.Error(err),
			)
			items = make(map[string]string)
		}
	}
	f.items = items
	f.loaded = true
	return nil
}

func (f *FileKV) flush(next map[string]string) error {
	data, err := json.Marshal(next)
	if err != nil {
		return storageErr("encode", f.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), fileKVName+".*.tmp")
	if err != nil {
		return storageErr("write", f.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("write", f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("sync", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageErr("write", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return storageErr("rename", f.path, err)
	}
	f.items = next
	return nil
}

// mutate aplica fn sobre una copia y solo la adopta si el archivo se escribio.
func (f *FileKV) mutate(ctx context.Context, op string, fn func(map[string]string) bool) error {
	if err := ctx.Err(); err != nil {
		return storageErr(op, "", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	next := make(map[string]string, len(f.items)+1)
	for k, v := range f.items {
		next[k] = v
	}
	if !fn(next) {
		return nil
	}
	return f.flush(next)
}

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storageErr("get", key, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return "", false, err
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.mutate(ctx, "set", func(m map[string]string) bool {
		if cur, ok := m[key]; ok && cur == value {
			return false
		}
		m[key] = value
		return true
	})
}

func (f *FileKV) Remove(ctx context.Context, key string) error {
	return f.RemoveMany(ctx, []string{key})
}

func (f *FileKV) RemoveMany(ctx context.Context, keys []string) error {
	return f.mutate(ctx, "remove", func(m map[string]string) bool {
		changed := false
		for _, k := range keys {
			if _, ok := m[k]; ok {
				delete(m, k)
				changed = true
			}
		}
		return changed
	})
}

func (f *FileKV) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", "", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
