package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kesnek-mobile/internal/config"
)

const installationIDFile = "installation-id"

var ErrUnknownBackend = errors.New("unknown store backend")

// Open construye el backend configurado. close libera conexiones; siempre es no nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KV, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.StoreBackend)) {
	case "", "file":
		kv, err := NewFileKV(cfg.StoreDir, logger)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case "memory":
		return NewMemoryKV(), noop, nil
	case "redis":
		id, err := InstallationID(cfg)
		if err != nil {
			return nil, noop, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			_ = client.Close()
			return nil, noop, storageErr("ping", cfg.RedisAddr, err)
		}
		kv, err := NewRedisKV(client, id)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return kv, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}

// InstallationID devuelve el id configurado o uno estable guardado en StoreDir.
func InstallationID(cfg *config.Config) (string, error) {
	if id := strings.TrimSpace(cfg.InstallationID); id != "" {
		return id, nil
	}
	path := filepath.Join(cfg.StoreDir, installationIDFile)
	raw, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", storageErr("read", installationIDFile, err)
	}

	if err := os.MkdirAll(cfg.StoreDir, 0o700); err != nil {
		return "", storageErr("mkdir", cfg.StoreDir, err)
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", storageErr("write", installationIDFile, err)
	}
	return id, nil
}
