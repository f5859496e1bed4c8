package bot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/giveabot/core/telegram/keyboard"
	"github.com/m3rciful/giveabot/internal/giveaway"
)

// joinCallbackKey is the callback unique the join button is registered
// under; the payload format is owned by the giveaway package.
const joinCallbackKey = "join"

var errTransportUnbound = errors.New("telegram transport not bound yet")

// chatDest adapts a destination string to a telebot recipient. Channel
// usernames ("@promo") pass through as-is; anything else is a decimal
// chat id.
type chatDest string

func (d chatDest) Recipient() string { return string(d) }

// Transport implements giveaway.Transport over a telebot bot. The bot
// instance only exists once the run loop has built it, so the transport
// is constructed unbound and receives the bot via Bind from the OnStart
// hook. Calls are synchronous: the lifecycle service needs the sent
// message id back and must see failures immediately.
type Transport struct {
	bot atomic.Pointer[tele.Bot]
}

// NewTransport builds an unbound telebot-backed transport.
func NewTransport() *Transport {
	return &Transport{}
}

// Bind attaches the live bot instance. Must happen before any update is
// handled; the run loop's OnStart hook satisfies that.
func (t *Transport) Bind(b *tele.Bot) {
	t.bot.Store(b)
}

func (t *Transport) current() (*tele.Bot, error) {
	b := t.bot.Load()
	if b == nil {
		return nil, errTransportUnbound
	}
	return b, nil
}

func (t *Transport) SendText(_ context.Context, dest, text string) error {
	b, err := t.current()
	if err != nil {
		return err
	}
	_, err = b.Send(chatDest(dest), text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}

func (t *Transport) SendPhoto(_ context.Context, dest, photoID, caption string, join *giveaway.JoinButton) (int, int64, error) {
	b, err := t.current()
	if err != nil {
		return 0, 0, err
	}
	photo := &tele.Photo{
		File:    tele.File{FileID: photoID},
		Caption: caption,
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if join != nil {
		opts.ReplyMarkup = joinMarkup(*join)
	}
	msg, err := b.Send(chatDest(dest), photo, opts)
	if err != nil {
		return 0, 0, err
	}
	return msg.ID, msg.Chat.ID, nil
}

func (t *Transport) EditJoinButton(_ context.Context, chatID int64, messageID int, join giveaway.JoinButton) error {
	b, err := t.current()
	if err != nil {
		return err
	}
	ref := &tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	_, err = b.EditReplyMarkup(ref, joinMarkup(join))
	return err
}

func joinMarkup(join giveaway.JoinButton) *tele.ReplyMarkup {
	buttons := []keyboard.InlineBtn{{
		Text:   join.Label,
		Unique: joinCallbackKey,
		Data:   join.Payload,
	}}
	if join.ShareURL != "" {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: textOpenInBot,
			URL:  join.ShareURL,
		})
	}
	return keyboard.InlineButtons(buttons)
}
