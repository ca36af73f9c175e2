package services

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DayMarkerStore records "this ran on day X" markers for once-per-day guards.
// Days are "2006-01-02" strings in the server timezone.
type DayMarkerStore interface {
	GetMarker(ctx context.Context, key string) (day string, ok bool, err error)
	SetMarker(ctx context.Context, key, day string, ttl time.Duration) error
}

// RedisMarkerStore keeps day markers in Redis so the guard survives restarts
// and is shared across replicas.
type RedisMarkerStore struct {
	client *redis.Client
	prefix string
}

func NewRedisMarkerStore(client *redis.Client, prefix string) *RedisMarkerStore {
	if prefix == "" {
		prefix = "daymarker:"
	}
	return &RedisMarkerStore{client: client, prefix: prefix}
}

func (s *RedisMarkerStore) GetMarker(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisMarkerStore) SetMarker(ctx context.Context, key, day string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, day, ttl).Err()
}

// MemoryMarkerStore is a process-local DayMarkerStore. Used in tests and as a
// fallback when Redis is not configured; TTLs are ignored since markers are
// overwritten daily anyway.
type MemoryMarkerStore struct {
	mu      sync.Mutex
	markers map[string]string
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{markers: make(map[string]string)}
}

func (s *MemoryMarkerStore) GetMarker(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.markers[key]
	return v, ok, nil
}

func (s *MemoryMarkerStore) SetMarker(_ context.Context, key, day string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[key] = day
	return nil
}
