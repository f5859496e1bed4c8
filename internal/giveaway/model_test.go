package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentionPrefersUsername(t *testing.T) {
	u := Identity{ID: 1, Username: "alice", FirstName: "Alice"}
	assert.Equal(t, "@alice", u.Mention())
}

func TestMentionFallsBackToDeepLink(t *testing.T) {
	u := Identity{ID: 7, FirstName: "Bob"}
	assert.Equal(t, `<a href="tg://user?id=7">Bob</a>`, u.Mention())

	anon := Identity{ID: 8}
	assert.Equal(t, `<a href="tg://user?id=8">participant</a>`, anon.Mention())
}

func TestMentionEscapesFirstName(t *testing.T) {
	u := Identity{ID: 9, FirstName: "<b>Eve</b>"}
	assert.Equal(t, `<a href="tg://user?id=9">&lt;b&gt;Eve&lt;/b&gt;</a>`, u.Mention())
}

func TestPublishedRequiresBothRefs(t *testing.T) {
	rec := NewRecord("text", "photo", Identity{ID: 1})
	assert.False(t, rec.Published())

	rec.ChannelID = "@promo"
	assert.False(t, rec.Published())

	rec.AnnouncementID = 5
	assert.True(t, rec.Published())
}

func TestHasParticipantGoesByID(t *testing.T) {
	rec := NewRecord("text", "photo", Identity{ID: 1})
	rec.Participants = append(rec.Participants, Identity{ID: 5, Username: "old"})

	assert.True(t, rec.HasParticipant(5))
	assert.False(t, rec.HasParticipant(6))
}
