package repo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// RedisIdempotency keeps Idempotency-Key -> task id mappings in Redis so every
// API instance sees the same keys.
type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{client: client, ttl: ttl, prefix: "idempotency:"}
}

func (r *RedisIdempotency) GetIdempotencyKey(ctx context.Context, key string) (model.TaskID, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrorNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return model.TaskID(id), nil
}

// SaveIdempotencyKey не перезаписывает уже сохранённый ключ
func (r *RedisIdempotency) SaveIdempotencyKey(ctx context.Context, key string, id model.TaskID) error {
	return r.client.SetNX(ctx, r.prefix+key, strconv.FormatInt(int64(id), 10), r.ttl).Err()
}

type memoryKey struct {
	id      model.TaskID
	savedAt time.Time
}

type MemoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]memoryKey
	now  func() time.Time
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{keys: make(map[string]memoryKey), now: time.Now}
}

func (m *MemoryIdempotency) GetIdempotencyKey(ctx context.Context, key string) (model.TaskID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, ok := m.keys[key]
	if !ok {
		return 0, ErrorNotFound
	}
	return k.id, nil
}

func (m *MemoryIdempotency) SaveIdempotencyKey(ctx context.Context, key string, id model.TaskID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[key]; !ok {
		m.keys[key] = memoryKey{id: id, savedAt: m.now()}
	}
	return nil
}

// PurgeIdempotencyKeys удаляет ключи, сохранённые раньше before
func (m *MemoryIdempotency) PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, k := range m.keys {
		if k.savedAt.Before(before) {
			delete(m.keys, key)
			n++
		}
	}
	return n, nil
}
