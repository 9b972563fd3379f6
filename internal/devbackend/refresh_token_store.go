package devbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshOpTimeout  = 500 * time.Millisecond
	defaultRefreshTTL = 24 * time.Hour
)

// ErrTokenStore envuelve fallas del almacenamiento de refresh tokens.
var ErrTokenStore = errors.New("refresh token store failure")

// RefreshTokenStore registra el jti de cada refresh token emitido. Consume es
// de un solo uso: un jti canjeado o vencido no vuelve a aparecer.
type RefreshTokenStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (userID string, ok bool, err error)
}

type refreshEntry struct {
	userID    string
	expiresAt time.Time
}

type memoryRefreshTokenStore struct {
	mu      sync.Mutex
	entries map[string]refreshEntry
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{entries: make(map[string]refreshEntry)}
}

func (s *memoryRefreshTokenStore) Save(_ context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("%w: empty jti", ErrTokenStore)
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = refreshEntry{userID: userID, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryRefreshTokenStore) Consume(_ context.Context, jti string) (string, bool, error) {
	jti = strings.TrimSpace(jti)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jti]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, jti)
	if time.Now().UTC().After(e.expiresAt) {
		return "", false, nil
	}
	return e.userID, true, nil
}

type refreshRedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// redisRefreshTokenStore guarda jti -> userID con TTL; GETDEL hace atomico el canje.
type redisRefreshTokenStore struct {
	client refreshRedisClient
	prefix string
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{client: client, prefix: "devbackend:refresh:"}
}

func (s *redisRefreshTokenStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("%w: empty jti", ErrTokenStore)
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	ctx, cancel := context.WithTimeout(ctx, refreshOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: save: %w", ErrTokenStore, err)
	}
	return nil
}

func (s *redisRefreshTokenStore) Consume(ctx context.Context, jti string) (string, bool, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, refreshOpTimeout)
	defer cancel()
	userID, err := s.client.GetDel(ctx, s.prefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: consume: %w", ErrTokenStore, err)
	}
	return userID, true, nil
}
