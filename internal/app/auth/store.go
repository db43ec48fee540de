package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "blinkdebit:token:"

// TokenStore keeps access tokens until they expire.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is a process-local TokenStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return "", false, nil
	}

	return entry.token, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return nil
}

// RedisStore shares tokens between every client instance using the same
// redis database.
type RedisStore struct {
	cache *redis.Client
}

func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{
		cache: cache,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.cache.Get(ctx, tokenKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return token, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, tokenKeyPrefix+key, token, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.cache.Del(ctx, tokenKeyPrefix+key).Err()
}
