package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "notify:order:"

// RedisIdempotencyStore remembers notified order ids for a TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Check returns true and the stored response when key was already processed.
func (s *RedisIdempotencyStore) Check(ctx context.Context, key string) (bool, []byte, error) {
	data, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("idempotency check: %w", err)
	}
	return true, data, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, idempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency save: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryIdempotencyStore is the in-process store used without Redis.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) Check(_ context.Context, key string) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return false, nil, nil
	}
	return true, e.data, nil
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{data: append([]byte(nil), data...), expiresAt: now.Add(s.ttl)}
	return nil
}
