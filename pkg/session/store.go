package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists session payloads by id. Load returns (nil, nil) for an
// unknown or expired id.
type Store interface {
	Load(ctx context.Context, id string) (map[string]interface{}, error)
	Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// ── Redis ────────────────────────────────────────────────────────────────────

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "marmita:session:"}
}

func (s *RedisStore) Load(ctx context.Context, id string) (map[string]interface{}, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis load: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}

// ── Memory ───────────────────────────────────────────────────────────────────

// MemoryStore keeps sessions in process. Payloads go through JSON exactly
// like RedisStore, so readers see the same types with either store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) Load(_ context.Context, id string) (map[string]interface{}, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && time.Now().After(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return decode(e.raw)
}

func (s *MemoryStore) Save(_ context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	s.mu.Lock()
	s.entries[id] = memoryEntry{raw: raw, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func decode(raw []byte) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return data, nil
}
