package giveaway

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGiveaway(t *testing.T, store *memStore, published bool) Record {
	t.Helper()
	rec := NewRecord("win a mug", "photo-1", owner())
	if published {
		rec.ChannelID = "@promo"
		rec.ChannelChatID = -42
		rec.AnnouncementID = 7
	}
	require.NoError(t, store.Insert(context.Background(), owner().ID, rec, 0))
	return rec
}

func TestJoinAppendsIdentity(t *testing.T) {
	store := newMemStore()
	gate := NewGate(store, &fakeTransport{})
	rec := seedGiveaway(t, store, false)

	who := Identity{ID: 555, Username: "alice"}
	res, err := gate.Join(context.Background(), owner().ID, rec.ID, who)
	require.NoError(t, err)
	assert.Equal(t, JoinOK, res)

	stored, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored.Participants, 1)
	assert.Equal(t, who, stored.Participants[0])
}

func TestJoinIsIdempotentPerIdentity(t *testing.T) {
	store := newMemStore()
	gate := NewGate(store, &fakeTransport{})
	rec := seedGiveaway(t, store, false)

	who := Identity{ID: 555, Username: "alice"}
	res, err := gate.Join(context.Background(), owner().ID, rec.ID, who)
	require.NoError(t, err)
	assert.Equal(t, JoinOK, res)

	// the snapshot may differ on repeat clicks; membership goes by id
	renamed := Identity{ID: 555, Username: "alice_new"}
	res, err = gate.Join(context.Background(), owner().ID, rec.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, JoinAlready, res)

	stored, _, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.Len(t, stored.Participants, 1)
	assert.Equal(t, "alice", stored.Participants[0].Username)
}

func TestJoinMissingGiveawayIsGone(t *testing.T) {
	gate := NewGate(newMemStore(), &fakeTransport{})

	res, err := gate.Join(context.Background(), owner().ID, uuid.New(), Identity{ID: 555})
	require.NoError(t, err)
	assert.Equal(t, JoinGone, res)
}

func TestJoinRefreshesCounterOnPublishedAnnouncement(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{}
	gate := NewGate(store, tp)
	rec := seedGiveaway(t, store, true)

	_, err := gate.Join(context.Background(), owner().ID, rec.ID, Identity{ID: 555})
	require.NoError(t, err)

	require.Len(t, tp.edits, 1)
	assert.Equal(t, int64(-42), tp.edits[0].chatID)
	assert.Equal(t, 7, tp.edits[0].messageID)
	assert.Equal(t, "Join (1)", tp.edits[0].join.Label)
}

func TestJoinUnpublishedSkipsCounterRefresh(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{}
	gate := NewGate(store, tp)
	rec := seedGiveaway(t, store, false)

	_, err := gate.Join(context.Background(), owner().ID, rec.ID, Identity{ID: 555})
	require.NoError(t, err)
	assert.Empty(t, tp.edits)
}

func TestJoinCounterRefreshFailureKeepsTheJoin(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{editErr: errors.New("message gone")}
	gate := NewGate(store, tp)
	rec := seedGiveaway(t, store, true)

	res, err := gate.Join(context.Background(), owner().ID, rec.ID, Identity{ID: 555})
	require.NoError(t, err)
	assert.Equal(t, JoinOK, res)

	stored, _, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.Len(t, stored.Participants, 1)
}

func TestJoinCounterRefreshKeepsShareLink(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{}
	gate := NewGate(store, tp)
	gate.SetShareBase("https://t.me/bot")
	rec := seedGiveaway(t, store, true)

	_, err := gate.Join(context.Background(), owner().ID, rec.ID, Identity{ID: 555})
	require.NoError(t, err)

	require.Len(t, tp.edits, 1)
	assert.Equal(t, "https://t.me/bot?start=100_"+rec.ID.String(), tp.edits[0].join.ShareURL)
}
