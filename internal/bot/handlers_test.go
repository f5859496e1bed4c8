package bot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/giveabot/core/logger"
	"github.com/m3rciful/giveabot/core/telegram/state"
	"github.com/m3rciful/giveabot/internal/giveaway"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

const testUserID int64 = 42

// botStore is an in-memory giveaway.Store for conversation tests.
type botStore struct {
	recs map[int64]map[uuid.UUID]giveaway.Record
}

func newBotStore() *botStore {
	return &botStore{recs: make(map[int64]map[uuid.UUID]giveaway.Record)}
}

func (s *botStore) Insert(_ context.Context, ownerID int64, rec giveaway.Record, _ time.Duration) error {
	if s.recs[ownerID] == nil {
		s.recs[ownerID] = make(map[uuid.UUID]giveaway.Record)
	}
	s.recs[ownerID][rec.ID] = rec
	return nil
}

func (s *botStore) Get(_ context.Context, ownerID int64, id uuid.UUID) (giveaway.Record, bool, error) {
	rec, ok := s.recs[ownerID][id]
	return rec, ok, nil
}

func (s *botStore) GetAll(_ context.Context, ownerID int64) ([]giveaway.Record, error) {
	out := make([]giveaway.Record, 0, len(s.recs[ownerID]))
	for _, rec := range s.recs[ownerID] {
		out = append(out, rec)
	}
	return out, nil
}

func (s *botStore) Remove(_ context.Context, ownerID int64, id uuid.UUID) error {
	delete(s.recs[ownerID], id)
	return nil
}

// nullTransport accepts every delivery so the tests can focus on the
// conversation flow.
type nullTransport struct{}

func (nullTransport) SendText(context.Context, string, string) error { return nil }

func (nullTransport) SendPhoto(context.Context, string, string, string, *giveaway.JoinButton) (int, int64, error) {
	return 1, -100, nil
}

func (nullTransport) EditJoinButton(context.Context, int64, int, giveaway.JoinButton) error {
	return nil
}

type nullArchive struct{}

func (nullArchive) RecordDraw(context.Context, giveaway.Record, []giveaway.Identity) error {
	return nil
}

// stubContext satisfies the slice of tele.Context the handlers touch.
// Everything it does not implement panics via the embedded interface.
type stubContext struct {
	tele.Context

	sender  *tele.User
	chat    *tele.Chat
	text    string
	message *tele.Message
	sent    []interface{}
	store   map[string]interface{}
}

func textUpdate(text string) *stubContext {
	return &stubContext{
		sender: &tele.User{ID: testUserID, Username: "organizer"},
		chat:   &tele.Chat{ID: testUserID},
		text:   text,
	}
}

func (s *stubContext) Sender() *tele.User { return s.sender }

func (s *stubContext) Chat() *tele.Chat { return s.chat }

func (s *stubContext) Text() string { return s.text }

func (s *stubContext) Message() *tele.Message { return s.message }

func (s *stubContext) Update() tele.Update { return tele.Update{} }

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	s.sent = append(s.sent, what)
	return nil
}

func (s *stubContext) Set(key string, value interface{}) {
	if s.store == nil {
		s.store = make(map[string]interface{})
	}
	s.store[key] = value
}

func (s *stubContext) Get(key string) interface{} { return s.store[key] }

// lastText returns the most recent plain-text reply.
func (s *stubContext) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.sent)
	text, ok := s.sent[len(s.sent)-1].(string)
	require.True(t, ok, "last send was %T, not text", s.sent[len(s.sent)-1])
	return text
}

func newTestHandlers(t *testing.T) (*Handlers, *botStore, state.Manager) {
	t.Helper()
	store := newBotStore()
	svc := giveaway.NewService(store, nullTransport{}, nullArchive{})
	gate := giveaway.NewGate(store, nullTransport{})
	fsm := state.NewMemoryManager()
	return NewHandlers(svc, gate, fsm, ""), store, fsm
}

func seedRecord(t *testing.T, store *botStore, participants ...giveaway.Identity) giveaway.Record {
	t.Helper()
	rec := giveaway.NewRecord("prize", "photo-1", giveaway.Identity{ID: testUserID, Username: "organizer"})
	rec.Participants = append(rec.Participants, participants...)
	require.NoError(t, store.Insert(context.Background(), testUserID, rec, 0))
	return rec
}

func TestStartedWindowMenuTransitions(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  state.State
		reply string
	}{
		{"create", MenuCreate, StateCreateGiveaway, textSendPhotoCaption},
		{"publish", MenuPublish, StateAddGroupID, textPickPublishArgs},
		{"end", MenuEnd, StateEndGiveaway, textPickDrawArgs},
		{"unknown input stays", "what?", StateStartedWindow, textDontUnderstand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, fsm := newTestHandlers(t)
			fsm.SetState(testUserID, StateStartedWindow)

			c := textUpdate(tc.input)
			require.NoError(t, h.startedWindow(c))

			assert.Equal(t, tc.want, fsm.GetState(testUserID))
			assert.Equal(t, tc.reply, c.lastText(t))
		})
	}
}

func TestStartedWindowCancelShowsCards(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	seedRecord(t, store)
	fsm.SetState(testUserID, StateStartedWindow)

	c := textUpdate(MenuCancel)
	require.NoError(t, h.startedWindow(c))

	assert.Equal(t, StateCancelGiveaway, fsm.GetState(testUserID))
	require.Len(t, c.sent, 2)
	_, isPhoto := c.sent[0].(*tele.Photo)
	assert.True(t, isPhoto, "expected a summary card before the prompt")
	assert.Equal(t, textPickCancelID, c.lastText(t))
}

func TestStartedWindowListMovesToSubmenu(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	seedRecord(t, store)
	fsm.SetState(testUserID, StateStartedWindow)

	c := textUpdate(MenuList)
	require.NoError(t, h.startedWindow(c))

	assert.Equal(t, StateList, fsm.GetState(testUserID))
	assert.Equal(t, textListHint, c.lastText(t))
}

func TestStartedWindowListEmptyStaysPut(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateStartedWindow)

	c := textUpdate(MenuList)
	require.NoError(t, h.startedWindow(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textNoGiveaways, c.lastText(t))
}

func TestCreateGiveawayRequiresPhoto(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateCreateGiveaway)

	c := textUpdate("just text")
	c.message = &tele.Message{Text: "just text"}
	require.NoError(t, h.createGiveaway(c))

	assert.Equal(t, StateCreateGiveaway, fsm.GetState(testUserID), "missing photo re-prompts in place")
	assert.Equal(t, textNeedPhoto, c.lastText(t))
}

func TestCreateGiveawayRequiresCaption(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateCreateGiveaway)

	c := textUpdate("")
	c.message = &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "photo-1"}}}
	require.NoError(t, h.createGiveaway(c))

	assert.Equal(t, StateCreateGiveaway, fsm.GetState(testUserID))
	assert.Equal(t, textNeedCaption, c.lastText(t))
}

func TestCreateGiveawayStoresAndReturnsToMenu(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateCreateGiveaway)

	c := textUpdate("")
	c.message = &tele.Message{
		Photo:   &tele.Photo{File: tele.File{FileID: "photo-1"}},
		Caption: "win a prize",
	}
	require.NoError(t, h.createGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	recs, err := store.GetAll(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "win a prize", recs[0].Text)
}

func TestCancelGiveawayBadIDResets(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateCancelGiveaway)

	c := textUpdate("not-a-uuid")
	require.NoError(t, h.cancelGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textBadID, c.lastText(t))
}

func TestCancelGiveawayRemovesRecord(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store)
	fsm.SetState(testUserID, StateCancelGiveaway)

	c := textUpdate(rec.ID.String())
	require.NoError(t, h.cancelGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	_, ok, err := store.Get(context.Background(), testUserID, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddGroupIDBadArgsReset(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateAddGroupID)

	c := textUpdate("@channel-only")
	require.NoError(t, h.addGroupID(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textBadPublishArgs, c.lastText(t))
}

func TestAddGroupIDUnknownIDResets(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateAddGroupID)

	c := textUpdate("@channel " + uuid.NewString())
	require.NoError(t, h.addGroupID(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textUnknownID, c.lastText(t))
}

func TestAddGroupIDPublishes(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store)
	fsm.SetState(testUserID, StateAddGroupID)

	c := textUpdate("@channel " + rec.ID.String())
	require.NoError(t, h.addGroupID(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	stored, ok, err := store.Get(context.Background(), testUserID, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.Published())
}

func TestEndGiveawayBadCountRepromptsInPlace(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store, giveaway.Identity{ID: 7, Username: "seven"})

	for _, input := range []string{rec.ID.String(), rec.ID.String() + " 0", rec.ID.String() + " lots"} {
		fsm.SetState(testUserID, StateEndGiveaway)

		c := textUpdate(input)
		require.NoError(t, h.endGiveaway(c))

		assert.Equal(t, StateEndGiveaway, fsm.GetState(testUserID), "input %q must keep the state", input)
		assert.Equal(t, textBadDrawArgs, c.lastText(t))
	}
}

func TestEndGiveawayBadIDResets(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateEndGiveaway)

	c := textUpdate("not-a-uuid 2")
	require.NoError(t, h.endGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textBadID, c.lastText(t))
}

func TestEndGiveawayUnknownIDResets(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateEndGiveaway)

	c := textUpdate(uuid.NewString() + " 1")
	require.NoError(t, h.endGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textUnknownID, c.lastText(t))
}

func TestEndGiveawayNoParticipantsResets(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store)
	fsm.SetState(testUserID, StateEndGiveaway)

	c := textUpdate(rec.ID.String() + " 1")
	require.NoError(t, h.endGiveaway(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textNoParticipants, c.lastText(t))
}

func TestEndGiveawayDrawMovesToRerollOrEnd(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store,
		giveaway.Identity{ID: 7, Username: "seven"},
		giveaway.Identity{ID: 8, Username: "eight"},
	)
	fsm.SetState(testUserID, StateEndGiveaway)

	c := textUpdate(rec.ID.String() + " 1")
	require.NoError(t, h.endGiveaway(c))

	assert.Equal(t, StateRerollOrEnd, fsm.GetState(testUserID))
	got, ok := fsm.GetTemp(testUserID, tempDrawID)
	require.True(t, ok)
	assert.Equal(t, rec.ID.String(), got)
}

func TestRerollOrEndReroll(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateRerollOrEnd)

	c := textUpdate(MenuReroll)
	require.NoError(t, h.rerollOrEnd(c))

	assert.Equal(t, StateEndGiveaway, fsm.GetState(testUserID))
	assert.Equal(t, textPickDrawArgs, c.lastText(t))
}

func TestRerollOrEndFinalize(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	drawn := uuid.NewString()
	fsm.SetTemp(testUserID, tempDrawID, drawn)
	fsm.SetState(testUserID, StateRerollOrEnd)

	c := textUpdate(MenuFinalizeEnd)
	require.NoError(t, h.rerollOrEnd(c))

	assert.Equal(t, StateCancelGiveaway, fsm.GetState(testUserID))
	assert.Contains(t, c.lastText(t), textPickCancelID)
	assert.Contains(t, c.lastText(t), drawn)
}

func TestListSubmenu(t *testing.T) {
	h, _, fsm := newTestHandlers(t)

	fsm.SetState(testUserID, StateList)
	c := textUpdate(MenuShowMembers)
	require.NoError(t, h.list(c))
	assert.Equal(t, StateShowParticipants, fsm.GetState(testUserID))

	fsm.SetState(testUserID, StateList)
	c = textUpdate(MenuReturn)
	require.NoError(t, h.list(c))
	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
}

func TestShowParticipantsBadIDResets(t *testing.T) {
	h, _, fsm := newTestHandlers(t)
	fsm.SetState(testUserID, StateShowParticipants)

	c := textUpdate("not-a-uuid")
	require.NoError(t, h.showParticipants(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Equal(t, textBadID, c.lastText(t))
}

func TestShowParticipantsListsMentions(t *testing.T) {
	h, store, fsm := newTestHandlers(t)
	rec := seedRecord(t, store, giveaway.Identity{ID: 7, Username: "seven"})
	fsm.SetState(testUserID, StateShowParticipants)

	c := textUpdate(rec.ID.String())
	require.NoError(t, h.showParticipants(c))

	assert.Equal(t, StateStartedWindow, fsm.GetState(testUserID))
	assert.Contains(t, c.lastText(t), "1. @seven")
}
