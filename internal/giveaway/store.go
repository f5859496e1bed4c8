package giveaway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	coreredis "github.com/m3rciful/giveabot/core/redis"
)

const ownerKeyPrefix = "giveaways:"

// Store persists giveaway records scoped per organizer. All records for
// one organizer live under a single mapping, so listing them is one bulk
// read. The store holds no business semantics and no in-process cache;
// every call goes to the remote hash.
type Store interface {
	Insert(ctx context.Context, ownerID int64, rec Record, ttl time.Duration) error
	Get(ctx context.Context, ownerID int64, id uuid.UUID) (Record, bool, error)
	GetAll(ctx context.Context, ownerID int64) ([]Record, error)
	Remove(ctx context.Context, ownerID int64, id uuid.UUID) error
}

type redisStore struct {
	client *coreredis.Client
}

// NewRedisStore builds the Redis-backed record store.
func NewRedisStore(client *coreredis.Client) Store {
	return &redisStore{client: client}
}

func ownerKey(ownerID int64) string {
	return fmt.Sprintf("%s%d", ownerKeyPrefix, ownerID)
}

func (s *redisStore) hash(ownerID int64) *coreredis.HashMap[uuid.UUID, Record] {
	return coreredis.NewHashMap[uuid.UUID, Record](s.client, ownerKey(ownerID))
}

func (s *redisStore) Insert(ctx context.Context, ownerID int64, rec Record, ttl time.Duration) error {
	return storageErr("insert", s.hash(ownerID).Insert(ctx, rec.ID, rec, ttl))
}

func (s *redisStore) Get(ctx context.Context, ownerID int64, id uuid.UUID) (Record, bool, error) {
	rec, ok, err := s.hash(ownerID).Get(ctx, id)
	if err != nil {
		return Record{}, false, storageErr("get", err)
	}
	return rec, ok, nil
}

func (s *redisStore) GetAll(ctx context.Context, ownerID int64) ([]Record, error) {
	entries, err := s.hash(ownerID).GetAll(ctx)
	if err != nil {
		return nil, storageErr("getall", err)
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Value)
	}
	return records, nil
}

func (s *redisStore) Remove(ctx context.Context, ownerID int64, id uuid.UUID) error {
	return storageErr("remove", s.hash(ownerID).Remove(ctx, id))
}
