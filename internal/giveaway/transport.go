package giveaway

import (
	"context"
	"fmt"
	"strings"
)

// JoinButton describes the inline controls attached to a published
// announcement. Payload encodes "<ownerID>:<giveawayID>". ShareURL,
// when set, adds a deep-link button under the join control so the post
// can be opened in a private chat with the bot.
type JoinButton struct {
	Label    string
	Payload  string
	ShareURL string
}

// JoinPayload formats the callback payload for a giveaway's join button.
func JoinPayload(ownerID int64, giveawayID string) string {
	return fmt.Sprintf("%d:%s", ownerID, giveawayID)
}

// ShareURL formats the deep link that delegates a /start to the join
// flow. Empty base yields no link.
func ShareURL(base string, ownerID int64, giveawayID string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s?start=%d_%s", strings.TrimRight(base, "/"), ownerID, giveawayID)
}

// JoinLabel renders the live counter label for the join control.
func JoinLabel(count int) string {
	return fmt.Sprintf("Join (%d)", count)
}

// Transport is the outbound side of the chat collaborator. Destinations
// are either a channel username ("@promo") or a decimal chat id. Text is
// rendered as Telegram HTML (mentions rely on it). No call is retried
// here; each reports success or failure once.
type Transport interface {
	SendText(ctx context.Context, dest, text string) error
	// SendPhoto posts the photo with its caption and optional join
	// control, returning the message id and the resolved numeric chat
	// id of the destination.
	SendPhoto(ctx context.Context, dest, photoID, caption string, join *JoinButton) (messageID int, chatID int64, err error)
	EditJoinButton(ctx context.Context, chatID int64, messageID int, join JoinButton) error
}
