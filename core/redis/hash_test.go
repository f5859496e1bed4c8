package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/giveabot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

type hashValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestHash(t *testing.T) (*miniredis.Miniredis, *HashMap[string, hashValue]) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewHashMap[string, hashValue](client, "test:hash")
}

func TestHashMapInsertGetRoundTrip(t *testing.T) {
	_, h := newTestHash(t)
	ctx := context.Background()

	want := hashValue{Name: "first", Count: 3}
	require.NoError(t, h.Insert(ctx, "a", want, 0))

	got, ok, err := h.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestHashMapGetMissingFieldIsAMiss(t *testing.T) {
	_, h := newTestHash(t)

	got, ok, err := h.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestHashMapGetCorruptedValueIsAnError(t *testing.T) {
	mr, h := newTestHash(t)

	// Field keys are stored as JSON, so "a" lives under `"a"`.
	mr.HSet(h.Key(), `"a"`, "{not json")

	_, ok, err := h.Get(context.Background(), "a")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "unmarshal value")
}

func TestHashMapGetAllMissingKeyIsEmpty(t *testing.T) {
	_, h := newTestHash(t)

	entries, err := h.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHashMapGetAllReturnsEveryEntry(t *testing.T) {
	_, h := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.Insert(ctx, "a", hashValue{Name: "first", Count: 1}, 0))
	require.NoError(t, h.Insert(ctx, "b", hashValue{Name: "second", Count: 2}, 0))

	entries, err := h.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byField := map[string]hashValue{}
	for _, e := range entries {
		byField[e.Field] = e.Value
	}
	assert.Equal(t, hashValue{Name: "first", Count: 1}, byField["a"])
	assert.Equal(t, hashValue{Name: "second", Count: 2}, byField["b"])
}

func TestHashMapGetAllCorruptedValueIsAnError(t *testing.T) {
	mr, h := newTestHash(t)

	mr.HSet(h.Key(), `"a"`, "{not json")

	_, err := h.GetAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal value")
}

func TestHashMapRemove(t *testing.T) {
	_, h := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.Insert(ctx, "a", hashValue{Name: "first"}, 0))
	require.NoError(t, h.Remove(ctx, "a"))

	_, ok, err := h.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashMapRemoveMissingFieldIsANoOp(t *testing.T) {
	_, h := newTestHash(t)

	require.NoError(t, h.Remove(context.Background(), "nope"))
}

func TestHashMapInsertWithTTLStoresTheField(t *testing.T) {
	_, h := newTestHash(t)
	ctx := context.Background()

	want := hashValue{Name: "expiring", Count: 7}
	require.NoError(t, h.Insert(ctx, "a", want, time.Hour))

	got, ok, err := h.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
