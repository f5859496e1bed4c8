package giveaway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/giveabot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

// memStore is an in-memory Store for tests.
type memStore struct {
	recs      map[int64]map[uuid.UUID]Record
	insertErr error
	getErr    error
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[int64]map[uuid.UUID]Record)}
}

func (s *memStore) Insert(_ context.Context, ownerID int64, rec Record, _ time.Duration) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.recs[ownerID] == nil {
		s.recs[ownerID] = make(map[uuid.UUID]Record)
	}
	s.recs[ownerID][rec.ID] = rec
	return nil
}

func (s *memStore) Get(_ context.Context, ownerID int64, id uuid.UUID) (Record, bool, error) {
	if s.getErr != nil {
		return Record{}, false, s.getErr
	}
	rec, ok := s.recs[ownerID][id]
	return rec, ok, nil
}

func (s *memStore) GetAll(_ context.Context, ownerID int64) ([]Record, error) {
	out := make([]Record, 0, len(s.recs[ownerID]))
	for _, rec := range s.recs[ownerID] {
		out = append(out, rec)
	}
	return out, nil
}

func (s *memStore) Remove(_ context.Context, ownerID int64, id uuid.UUID) error {
	delete(s.recs[ownerID], id)
	return nil
}

type sentPhoto struct {
	dest    string
	photoID string
	caption string
	join    *JoinButton
}

type sentText struct {
	dest string
	text string
}

type buttonEdit struct {
	chatID    int64
	messageID int
	join      JoinButton
}

// fakeTransport records outbound calls.
type fakeTransport struct {
	texts    []sentText
	photos   []sentPhoto
	edits    []buttonEdit
	textErr  error
	photoErr error
	editErr  error

	nextMsgID  int
	nextChatID int64
}

func (t *fakeTransport) SendText(_ context.Context, dest, text string) error {
	if t.textErr != nil {
		return t.textErr
	}
	t.texts = append(t.texts, sentText{dest: dest, text: text})
	return nil
}

func (t *fakeTransport) SendPhoto(_ context.Context, dest, photoID, caption string, join *JoinButton) (int, int64, error) {
	if t.photoErr != nil {
		return 0, 0, t.photoErr
	}
	t.photos = append(t.photos, sentPhoto{dest: dest, photoID: photoID, caption: caption, join: join})
	return t.nextMsgID, t.nextChatID, nil
}

func (t *fakeTransport) EditJoinButton(_ context.Context, chatID int64, messageID int, join JoinButton) error {
	if t.editErr != nil {
		return t.editErr
	}
	t.edits = append(t.edits, buttonEdit{chatID: chatID, messageID: messageID, join: join})
	return nil
}

type recordedDraw struct {
	rec     Record
	winners []Identity
}

type fakeArchive struct {
	draws []recordedDraw
	err   error
}

func (a *fakeArchive) RecordDraw(_ context.Context, rec Record, winners []Identity) error {
	if a.err != nil {
		return a.err
	}
	a.draws = append(a.draws, recordedDraw{rec: rec, winners: winners})
	return nil
}

func owner() Identity {
	return Identity{ID: 100, Username: "organizer"}
}

func participants(n int) []Identity {
	out := make([]Identity, n)
	for i := range out {
		out[i] = Identity{ID: int64(1000 + i), Username: fmt.Sprintf("user%d", i)}
	}
	return out
}

func TestCreateStartsEmptyAndUnpublished(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeTransport{}, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Empty(t, rec.Participants)
	assert.False(t, rec.Published())

	stored, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, stored)
}

func TestPublishSetsAnnouncementRefs(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{nextMsgID: 77, nextChatID: -1_001_234}
	svc := NewService(store, tp, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), owner().ID, rec.ID, "@promo")
	require.NoError(t, err)

	assert.True(t, published.Published())
	assert.Equal(t, "@promo", published.ChannelID)
	assert.Equal(t, int64(-1_001_234), published.ChannelChatID)
	assert.Equal(t, 77, published.AnnouncementID)

	require.Len(t, tp.photos, 1)
	assert.Equal(t, "@promo", tp.photos[0].dest)
	assert.Equal(t, "photo-1", tp.photos[0].photoID)
	require.NotNil(t, tp.photos[0].join)
	assert.Equal(t, "Join (0)", tp.photos[0].join.Label)

	stored, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.Published())
}

func TestPublishTransportFailureLeavesRecordUnpublished(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{photoErr: errors.New("channel rejected")}
	svc := NewService(store, tp, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), owner().ID, rec.ID, "@promo")
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "TRANSPORT_ERROR", terr.Code())

	stored, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, stored.Published())
}

func TestPublishUnknownID(t *testing.T) {
	svc := NewService(newMemStore(), &fakeTransport{}, nil)

	_, err := svc.Publish(context.Background(), owner().ID, uuid.New(), "@promo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelRemovesRecordAndUnknownIDIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeTransport{}, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), owner().ID, rec.ID))
	_, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// cancelling again must not fail
	assert.NoError(t, svc.Cancel(context.Background(), owner().ID, rec.ID))
}

func TestListEmptyIsNotAnError(t *testing.T) {
	svc := NewService(newMemStore(), &fakeTransport{}, nil)

	recs, err := svc.List(context.Background(), owner().ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDrawWinnersDistinctSubset(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{}
	svc := NewService(store, tp, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)
	rec.Participants = participants(10)
	require.NoError(t, store.Insert(context.Background(), owner().ID, rec, 0))

	winners, err := svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 3)
	require.NoError(t, err)
	require.Len(t, winners, 3)

	pool := make(map[int64]bool, len(rec.Participants))
	for _, p := range rec.Participants {
		pool[p.ID] = true
	}
	seen := make(map[int64]bool, len(winners))
	for _, w := range winners {
		assert.True(t, pool[w.ID], "winner %d not from the pool", w.ID)
		assert.False(t, seen[w.ID], "winner %d drawn twice", w.ID)
		seen[w.ID] = true
	}

	// announcement went to the organizer chat; record stays in place
	require.Len(t, tp.texts, 1)
	assert.Equal(t, "100", tp.texts[0].dest)
	_, ok, err := store.Get(context.Background(), owner().ID, rec.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDrawWinnersCountAbovePoolReturnsEveryone(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeTransport{}, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)
	rec.Participants = participants(4)
	require.NoError(t, store.Insert(context.Background(), owner().ID, rec, 0))

	winners, err := svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 10)
	require.NoError(t, err)
	require.Len(t, winners, 4)

	seen := make(map[int64]bool)
	for _, w := range winners {
		seen[w.ID] = true
	}
	assert.Len(t, seen, 4)
}

func TestDrawWinnersPublishedAnnouncesToChannel(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{nextMsgID: 5, nextChatID: -42}
	svc := NewService(store, tp, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)
	published, err := svc.Publish(context.Background(), owner().ID, rec.ID, "@promo")
	require.NoError(t, err)

	published.Participants = participants(5)
	require.NoError(t, store.Insert(context.Background(), owner().ID, published, 0))

	_, err = svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 2)
	require.NoError(t, err)

	require.Len(t, tp.texts, 2)
	assert.Equal(t, "100", tp.texts[0].dest)
	assert.Equal(t, "@promo", tp.texts[1].dest)
	assert.Equal(t, tp.texts[0].text, tp.texts[1].text)
}

func TestDrawWinnersNoParticipants(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeTransport{}, nil)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	_, err = svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 1)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestDrawWinnersUnknownID(t *testing.T) {
	svc := NewService(newMemStore(), &fakeTransport{}, nil)

	_, err := svc.DrawWinners(context.Background(), owner().ID, "100", uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrawWinnersArchiveFailureDoesNotFailDraw(t *testing.T) {
	store := newMemStore()
	arch := &fakeArchive{err: errors.New("pg down")}
	svc := NewService(store, &fakeTransport{}, arch)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)
	rec.Participants = participants(3)
	require.NoError(t, store.Insert(context.Background(), owner().ID, rec, 0))

	winners, err := svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 2)
	require.NoError(t, err)
	assert.Len(t, winners, 2)
}

func TestDrawWinnersArchivesDraw(t *testing.T) {
	store := newMemStore()
	arch := &fakeArchive{}
	svc := NewService(store, &fakeTransport{}, arch)

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)
	rec.Participants = participants(3)
	require.NoError(t, store.Insert(context.Background(), owner().ID, rec, 0))

	winners, err := svc.DrawWinners(context.Background(), owner().ID, "100", rec.ID, 2)
	require.NoError(t, err)

	require.Len(t, arch.draws, 1)
	assert.Equal(t, rec.ID, arch.draws[0].rec.ID)
	assert.Equal(t, winners, arch.draws[0].winners)
}

func TestPublishAttachesShareLinkWhenConfigured(t *testing.T) {
	store := newMemStore()
	tp := &fakeTransport{}
	svc := NewService(store, tp, nil)
	svc.SetShareBase("https://t.me/bot")

	rec, err := svc.Create(context.Background(), "win a mug", "photo-1", owner())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), owner().ID, rec.ID, "@promo")
	require.NoError(t, err)

	require.Len(t, tp.photos, 1)
	require.NotNil(t, tp.photos[0].join)
	assert.Equal(t, "https://t.me/bot?start=100_"+rec.ID.String(), tp.photos[0].join.ShareURL)
}
