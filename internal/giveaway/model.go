package giveaway

import (
	"fmt"
	"html"

	"github.com/google/uuid"
)

// Identity is a snapshot of the Telegram user as seen when they touched a
// giveaway. It is persisted as part of the record, so renames after the
// fact do not affect membership checks, which go by ID only.
type Identity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Mention renders the identity as a Telegram HTML mention. Users without
// a public username get a tg://user deep link on their first name.
func (u Identity) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if name == "" {
		name = "participant"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}

// Record is one giveaway owned by a single organizer.
//
// ChannelID and AnnouncementID are set together by Publish or not at
// all: a record never claims publication without a reference to the
// announcement message it would need to edit.
type Record struct {
	ID             uuid.UUID  `json:"id"`
	Text           string     `json:"text"`
	PhotoID        string     `json:"photo"`
	ChannelID      string     `json:"channel_id,omitempty"`
	ChannelChatID  int64      `json:"channel_chat_id,omitempty"`
	AnnouncementID int        `json:"announcement_id,omitempty"`
	Owner          Identity   `json:"owner"`
	Participants   []Identity `json:"participants"`
}

// NewRecord builds an unpublished record with a fresh random id and an
// empty participant pool.
func NewRecord(text, photoID string, owner Identity) Record {
	return Record{
		ID:           uuid.New(),
		Text:         text,
		PhotoID:      photoID,
		Owner:        owner,
		Participants: []Identity{},
	}
}

// Published reports whether the record has been posted to a channel.
func (r *Record) Published() bool {
	return r.ChannelID != "" && r.AnnouncementID != 0
}

// HasParticipant reports membership by identity id.
func (r *Record) HasParticipant(id int64) bool {
	for _, p := range r.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
