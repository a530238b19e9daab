package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const stashKeyPrefix = "payload:"

// ErrStashMiss is returned for a token that is unknown or expired
var ErrStashMiss = errors.New("stashed payload not found")

// Stash stores values too large to travel in a callback button
// and hands out short tokens for them.
type Stash interface {
	Put(ctx context.Context, value string) (string, error)
	Get(ctx context.Context, token string) (string, error)
}

// stashToken derives a stable token so a value is stored once
func stashToken(value string) string {
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])[:20]
}

// RedisStash keeps stashed values in redis with a TTL
type RedisStash struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStash creates a redis backed stash
func NewRedisStash(rdb redis.UniversalClient, ttl time.Duration) *RedisStash {
	return &RedisStash{rdb: rdb, ttl: ttl}
}

// Put stores value and returns its token
func (s *RedisStash) Put(ctx context.Context, value string) (string, error) {
	token := stashToken(value)
	if err := s.rdb.Set(ctx, stashKeyPrefix+token, value, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("stash payload: %w", err)
	}
	return token, nil
}

// Get returns the value stored under token
func (s *RedisStash) Get(ctx context.Context, token string) (string, error) {
	value, err := s.rdb.Get(ctx, stashKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStashMiss
	}
	if err != nil {
		return "", fmt.Errorf("load stashed payload: %w", err)
	}
	return value, nil
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStash is the in-process stash used when redis is not configured
type MemoryStash struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStash creates an in-memory stash
func NewMemoryStash(ttl time.Duration) *MemoryStash {
	return &MemoryStash{
		ttl:   ttl,
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// Put stores value and returns its token. Expired entries are swept on write.
func (s *MemoryStash) Put(_ context.Context, value string) (string, error) {
	token := stashToken(value)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.items {
		if now.After(e.expires) {
			delete(s.items, k)
		}
	}
	s.items[token] = memoryEntry{value: value, expires: now.Add(s.ttl)}
	return token, nil
}

// Get returns the value stored under token
func (s *MemoryStash) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[token]
	if !ok || s.now().After(e.expires) {
		return "", ErrStashMiss
	}
	return e.value, nil
}
