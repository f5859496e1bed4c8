package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/m3rciful/giveabot/core/logger"
)

// HashMap is a typed view over a single Redis hash key. Fields and values
// are serialized independently as JSON, mirroring how they round-trip on
// the wire: HSET/HGET/HGETALL/HDEL, plus HPEXPIRE for per-field TTLs.
type HashMap[F comparable, V any] struct {
	key string
	c   redis.Cmdable
}

// NewHashMap binds a typed hash view to the given store-level key.
func NewHashMap[F comparable, V any](c redis.Cmdable, key string) *HashMap[F, V] {
	return &HashMap[F, V]{key: key, c: c}
}

// Key returns the store-level Redis key the map is bound to.
func (h *HashMap[F, V]) Key() string {
	return h.key
}

// Insert sets a field-value pair. When ttl is positive, HSET and HPEXPIRE
// are issued in one transactional pipeline so the field is never visible
// without its expiry.
func (h *HashMap[F, V]) Insert(ctx context.Context, field F, value V, ttl time.Duration) error {
	f, err := json.Marshal(field)
	if err != nil {
		return fmt.Errorf("marshal field: %w", err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	if ttl > 0 {
		pipe := h.c.TxPipeline()
		pipe.HSet(ctx, h.key, string(f), v)
		pipe.HPExpire(ctx, h.key, ttl, string(f))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("hset+hpexpire %s: %w", h.key, err)
		}
		return nil
	}

	if err := h.c.HSet(ctx, h.key, string(f), v).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", h.key, err)
	}
	return nil
}

// Get returns the value stored under field. The second return value
// reports presence; a stored value that fails to deserialize is an error,
// not a miss.
func (h *HashMap[F, V]) Get(ctx context.Context, field F) (V, bool, error) {
	var zero V

	f, err := json.Marshal(field)
	if err != nil {
		return zero, false, fmt.Errorf("marshal field: %w", err)
	}

	raw, err := h.c.HGet(ctx, h.key, string(f)).Result()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("hget %s: %w", h.key, err)
	}

	var value V
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return zero, false, fmt.Errorf("unmarshal value at %s: %w", h.key, err)
	}
	return value, true, nil
}

// Entry is one field-value pair returned by GetAll.
type Entry[F comparable, V any] struct {
	Field F
	Value V
}

// GetAll returns every field-value pair under the key in unspecified
// order. A missing key yields an empty slice.
func (h *HashMap[F, V]) GetAll(ctx context.Context) ([]Entry[F, V], error) {
	raw, err := h.c.HGetAll(ctx, h.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", h.key, err)
	}

	logger.RED.Debug("hash read",
		slog.String("event", "redis.hgetall"),
		slog.String("db", h.key),
		slog.Int("count", len(raw)),
	)

	entries := make([]Entry[F, V], 0, len(raw))
	for f, v := range raw {
		var field F
		if err := json.Unmarshal([]byte(f), &field); err != nil {
			return nil, fmt.Errorf("unmarshal field at %s: %w", h.key, err)
		}
		var value V
		if err := json.Unmarshal([]byte(v), &value); err != nil {
			return nil, fmt.Errorf("unmarshal value at %s: %w", h.key, err)
		}
		entries = append(entries, Entry[F, V]{Field: field, Value: value})
	}
	return entries, nil
}

// Remove deletes the field. Removing a missing field is a no-op.
func (h *HashMap[F, V]) Remove(ctx context.Context, field F) error {
	f, err := json.Marshal(field)
	if err != nil {
		return fmt.Errorf("marshal field: %w", err)
	}
	if err := h.c.HDel(ctx, h.key, string(f)).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", h.key, err)
	}
	return nil
}
