package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/giveabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/giveabot/core/telegram/helpers"
	"github.com/m3rciful/giveabot/core/telegram/state"
	"github.com/m3rciful/giveabot/internal/giveaway"
)

// tempDrawID remembers the giveaway a draw was just performed on, so
// the reroll-or-end prompt can reference it.
const tempDrawID = "draw_giveaway_id"

// Handlers owns the conversation flows: commands, the per-user state
// machine, and the join callback. Organizer identity is always the
// sender; all lifecycle calls are scoped to it.
type Handlers struct {
	svc    *giveaway.Service
	gate   *giveaway.Gate
	fsm    state.Manager
	botURL string
}

// NewHandlers wires the conversation handlers. botURL, when set, is used
// to build share deep links after publishing.
func NewHandlers(svc *giveaway.Service, gate *giveaway.Gate, fsm state.Manager, botURL string) *Handlers {
	return &Handlers{svc: svc, gate: gate, fsm: fsm, botURL: botURL}
}

// RegisterStates binds every conversation state to its handler.
func (h *Handlers) RegisterStates() {
	state.RegisterHandler(StateStartedWindow, h.startedWindow)
	state.RegisterHandler(StateCreateGiveaway, h.createGiveaway)
	state.RegisterHandler(StateCancelGiveaway, h.cancelGiveaway)
	state.RegisterHandler(StateAddGroupID, h.addGroupID)
	state.RegisterHandler(StateEndGiveaway, h.endGiveaway)
	state.RegisterHandler(StateRerollOrEnd, h.rerollOrEnd)
	state.RegisterHandler(StateList, h.list)
	state.RegisterHandler(StateShowParticipants, h.showParticipants)
}

// Start handles /start. A bare /start opens the main menu; a deep-link
// payload ("<ownerID>_<giveawayID>") is a join attempt and leaves the
// conversation state untouched.
func (h *Handlers) Start(c tele.Context) error {
	ref, hasPayload, err := ParseStartPayload(c.Message().Payload)
	if hasPayload {
		if err != nil {
			return tghelpers.SendText(c, textJoinGone)
		}
		res, err := h.gate.Join(tghelpers.BuildContext(c), ref.OwnerID, ref.GiveawayID, identityOf(c.Sender()))
		if err != nil {
			_ = tghelpers.SendText(c, textSomethingWrong)
			return err
		}
		return tghelpers.SendText(c, joinResultText(res))
	}

	h.fsm.SetState(c.Sender().ID, StateStartedWindow)
	return tghelpers.SendHTML(c, textWelcome, MainMenu())
}

// CancelConversation handles /cancel: it resets the state machine to
// idle without touching any stored giveaways.
func (h *Handlers) CancelConversation(c tele.Context) error {
	h.fsm.ClearState(c.Sender().ID)
	h.fsm.ClearTemp(c.Sender().ID, tempDrawID)
	return tghelpers.SendText(c, textCancelled)
}

// JoinCallback handles clicks on the announcement join button. The
// outcome is answered back on the callback query itself, so the click
// never produces a message in the channel.
func (h *Handlers) JoinCallback(c tele.Context) error {
	ref, err := ParseJoinPayload(callbacks.CallbackPayload(c))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textJoinGone, ShowAlert: true})
	}
	res, err := h.gate.Join(tghelpers.BuildContext(c), ref.OwnerID, ref.GiveawayID, identityOf(c.Sender()))
	if err != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: textSomethingWrong, ShowAlert: true})
		return err
	}
	if res == giveaway.JoinGone {
		// The giveaway ended between publish and click; just ack.
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: joinResultText(res), ShowAlert: true})
}

func (h *Handlers) startedWindow(c tele.Context) error {
	userID := c.Sender().ID
	switch c.Text() {
	case MenuCreate:
		h.fsm.SetState(userID, StateCreateGiveaway)
		return tghelpers.SendText(c, textSendPhotoCaption)

	case MenuCancel:
		if err := h.sendCards(c); err != nil {
			return err
		}
		h.fsm.SetState(userID, StateCancelGiveaway)
		return tghelpers.SendText(c, textPickCancelID)

	case MenuList:
		recs, err := h.svc.List(tghelpers.BuildContext(c), userID)
		if err != nil {
			_ = tghelpers.SendText(c, textSomethingWrong)
			return err
		}
		if len(recs) == 0 {
			return tghelpers.SendText(c, textNoGiveaways)
		}
		for _, rec := range recs {
			if err := h.sendCard(c, rec); err != nil {
				return err
			}
		}
		h.fsm.SetState(userID, StateList)
		return tghelpers.SendHTML(c, textListHint, ListMenu())

	case MenuPublish:
		h.fsm.SetState(userID, StateAddGroupID)
		return tghelpers.SendText(c, textPickPublishArgs)

	case MenuEnd:
		h.fsm.SetState(userID, StateEndGiveaway)
		return tghelpers.SendText(c, textPickDrawArgs)
	}
	return tghelpers.SendText(c, textDontUnderstand)
}

func (h *Handlers) createGiveaway(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return tghelpers.SendText(c, textNeedPhoto)
	}
	if strings.TrimSpace(msg.Caption) == "" {
		return tghelpers.SendText(c, textNeedCaption)
	}

	owner := identityOf(c.Sender())
	rec, err := h.svc.Create(tghelpers.BuildContext(c), msg.Caption, msg.Photo.FileID, owner)
	if err != nil {
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}

	h.fsm.SetState(owner.ID, StateStartedWindow)
	return tghelpers.SendHTML(c, fmt.Sprintf("Giveaway created.\nID: <code>%s</code>", rec.ID), MainMenu())
}

func (h *Handlers) cancelGiveaway(c tele.Context) error {
	userID := c.Sender().ID
	id, err := uuid.Parse(strings.TrimSpace(c.Text()))
	if err != nil {
		return h.resetWith(c, textBadID)
	}

	if err := h.svc.Cancel(tghelpers.BuildContext(c), userID, id); err != nil {
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}
	h.fsm.ClearTemp(userID, tempDrawID)
	h.fsm.SetState(userID, StateStartedWindow)
	return tghelpers.SendHTML(c, textGiveawayCancelled, MainMenu())
}

func (h *Handlers) addGroupID(c tele.Context) error {
	userID := c.Sender().ID
	channel, id, err := ParsePublishArgs(c.Text())
	if err != nil {
		return h.resetWith(c, textBadPublishArgs)
	}

	rec, err := h.svc.Publish(tghelpers.BuildContext(c), userID, id, channel)
	if err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			return h.resetWith(c, textUnknownID)
		}
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}

	h.fsm.SetState(userID, StateStartedWindow)
	text := fmt.Sprintf("Published to %s.", channel)
	if link := h.shareLink(userID, rec.ID); link != "" {
		text += "\nShare link: " + link
	}
	return tghelpers.SendHTML(c, text, MainMenu())
}

func (h *Handlers) endGiveaway(c tele.Context) error {
	userID := c.Sender().ID
	id, count, err := ParseDrawArgs(c.Text())
	if err != nil {
		if errors.Is(err, errDrawCount) {
			// Bad count keeps the state: the id may well be fine.
			return tghelpers.SendText(c, textBadDrawArgs)
		}
		return h.resetWith(c, textBadID)
	}

	organizerChat := chatRecipient(c)
	_, err = h.svc.DrawWinners(tghelpers.BuildContext(c), userID, organizerChat, id, count)
	if err != nil {
		switch {
		case errors.Is(err, giveaway.ErrNotFound):
			return h.resetWith(c, textUnknownID)
		case errors.Is(err, giveaway.ErrNoParticipants):
			return h.resetWith(c, textNoParticipants)
		}
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}

	h.fsm.SetTemp(userID, tempDrawID, id.String())
	h.fsm.SetState(userID, StateRerollOrEnd)
	return tghelpers.SendHTML(c, textRerollOrEnd, RerollMenu())
}

func (h *Handlers) rerollOrEnd(c tele.Context) error {
	userID := c.Sender().ID
	switch c.Text() {
	case MenuReroll:
		h.fsm.SetState(userID, StateEndGiveaway)
		return tghelpers.SendText(c, textPickDrawArgs)
	case MenuFinalizeEnd:
		h.fsm.SetState(userID, StateCancelGiveaway)
		prompt := textPickCancelID
		if id, ok := h.fsm.GetTemp(userID, tempDrawID); ok {
			prompt = fmt.Sprintf("%s\nLast drawn: %v", textPickCancelID, id)
		}
		return tghelpers.SendText(c, prompt)
	}
	return tghelpers.SendText(c, textDontUnderstand)
}

func (h *Handlers) list(c tele.Context) error {
	userID := c.Sender().ID
	switch c.Text() {
	case MenuShowMembers:
		h.fsm.SetState(userID, StateShowParticipants)
		return tghelpers.SendText(c, textPickParticipantID)
	case MenuReturn:
		h.fsm.SetState(userID, StateStartedWindow)
		return tghelpers.SendHTML(c, textBackToMenu, MainMenu())
	}
	return tghelpers.SendText(c, textDontUnderstand)
}

func (h *Handlers) showParticipants(c tele.Context) error {
	userID := c.Sender().ID
	id, err := uuid.Parse(strings.TrimSpace(c.Text()))
	if err != nil {
		return h.resetWith(c, textBadID)
	}

	rec, err := h.svc.Get(tghelpers.BuildContext(c), userID, id)
	if err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			return h.resetWith(c, textUnknownID)
		}
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}

	h.fsm.SetState(userID, StateStartedWindow)
	if len(rec.Participants) == 0 {
		return tghelpers.SendHTML(c, textNoParticipants, MainMenu())
	}

	var b strings.Builder
	b.WriteString("Participants:\n")
	for i, p := range rec.Participants {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Mention())
	}
	return tghelpers.SendHTML(c, strings.TrimRight(b.String(), "\n"), MainMenu())
}

// UnknownText implements ui.FallbackProvider for plain text outside any
// conversation.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textDontUnderstand)
	}
}

// UnknownDocument implements ui.FallbackProvider.
func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textDontUnderstand)
	}
}

// UnknownCallback implements ui.FallbackProvider.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textDontUnderstand})
	}
}

// resetWith reports a parse or lookup failure and returns the
// conversation to the started window so the user is never stuck in a
// state whose expected input they cannot produce.
func (h *Handlers) resetWith(c tele.Context, text string) error {
	h.fsm.SetState(c.Sender().ID, StateStartedWindow)
	return tghelpers.SendHTML(c, text, MainMenu())
}

// sendCards sends one summary card per giveaway, or a "none" notice.
func (h *Handlers) sendCards(c tele.Context) error {
	recs, err := h.svc.List(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, textSomethingWrong)
		return err
	}
	if len(recs) == 0 {
		return tghelpers.SendText(c, textNoGiveaways)
	}
	for _, rec := range recs {
		if err := h.sendCard(c, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) sendCard(c tele.Context, rec giveaway.Record) error {
	photo := &tele.Photo{
		File:    tele.File{FileID: rec.PhotoID},
		Caption: summaryCaption(rec),
	}
	return c.Send(photo, tele.ModeHTML)
}

// summaryCaption renders a giveaway overview card. The caption text is
// organizer-supplied and must be escaped for HTML parse mode.
func summaryCaption(rec giveaway.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: <code>%s</code>\n", rec.ID)
	fmt.Fprintf(&b, "Owner: %s\n", rec.Owner.Mention())
	fmt.Fprintf(&b, "Text: %s\n", html.EscapeString(rec.Text))
	fmt.Fprintf(&b, "Participants: %d", len(rec.Participants))
	if rec.Published() {
		fmt.Fprintf(&b, "\nChannel: %s", html.EscapeString(rec.ChannelID))
	}
	return b.String()
}

func (h *Handlers) shareLink(ownerID int64, id uuid.UUID) string {
	return giveaway.ShareURL(h.botURL, ownerID, id.String())
}

func joinResultText(res giveaway.JoinResult) string {
	switch res {
	case giveaway.JoinOK:
		return textJoinedOK
	case giveaway.JoinAlready:
		return textJoinedAlready
	}
	return textJoinGone
}

func identityOf(u *tele.User) giveaway.Identity {
	if u == nil {
		return giveaway.Identity{}
	}
	return giveaway.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
	}
}

// chatRecipient renders the current chat as a transport destination.
func chatRecipient(c tele.Context) string {
	if chat := c.Chat(); chat != nil {
		return chat.Recipient()
	}
	return fmt.Sprintf("%d", c.Sender().ID)
}
