package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 500 * time.Millisecond

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisKV guarda las claves de la instalacion en Redis bajo un prefijo propio.
type RedisKV struct {
	client redisKVClient
	prefix string
}

func NewRedisKV(client *redis.Client, installationID string) (*RedisKV, error) {
	if client == nil {
		return nil, errors.New("redis kv: nil client")
	}
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return nil, errors.New("redis kv: empty installation id")
	}
	return &RedisKV{
		client: client,
		prefix: "kesnek:" + installationID + ":",
	}, nil
}

func (r *RedisKV) key(k string) string {
	return r.prefix + k
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get", key, err)
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return storageErr("set", key, err)
	}
	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	return r.RemoveMany(ctx, []string{key})
}

func (r *RedisKV) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return storageErr("remove", strings.Join(keys, ","), err)
	}
	return nil
}

func (r *RedisKV) ListKeys(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 4*redisOpTimeout)
	defer cancel()
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, storageErr("list", "", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, r.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}
