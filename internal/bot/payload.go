package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Draw argument failures are distinguished so the conversation can
// re-prompt in place on a bad count but reset on a bad id.
var (
	errDrawID    = errors.New("draw args: bad giveaway id")
	errDrawCount = errors.New("draw args: count must be a positive number")
)

// JoinRef identifies a giveaway from an inbound join interaction.
type JoinRef struct {
	OwnerID    int64
	GiveawayID uuid.UUID
}

// ParseJoinPayload parses the join-button callback payload
// "<ownerID>:<giveawayID>". A third ":<nonce>" segment is tolerated and
// ignored; it only ever forced a label refresh, it carries no meaning.
func ParseJoinPayload(payload string) (JoinRef, error) {
	parts := strings.SplitN(payload, ":", 3)
	if len(parts) < 2 {
		return JoinRef{}, fmt.Errorf("join payload %q: want owner:id", payload)
	}
	owner, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return JoinRef{}, fmt.Errorf("join payload owner %q: %w", parts[0], err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return JoinRef{}, fmt.Errorf("join payload id %q: %w", parts[1], err)
	}
	return JoinRef{OwnerID: owner, GiveawayID: id}, nil
}

// ParseStartPayload parses the deep-link payload "<ownerID>_<giveawayID>"
// carried by /start. ok is false for a bare /start with no payload.
func ParseStartPayload(payload string) (JoinRef, bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return JoinRef{}, false, nil
	}
	parts := strings.SplitN(payload, "_", 2)
	if len(parts) != 2 {
		return JoinRef{}, true, fmt.Errorf("start payload %q: want owner_id", payload)
	}
	owner, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return JoinRef{}, true, fmt.Errorf("start payload owner %q: %w", parts[0], err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return JoinRef{}, true, fmt.Errorf("start payload id %q: %w", parts[1], err)
	}
	return JoinRef{OwnerID: owner, GiveawayID: id}, true, nil
}

// ParsePublishArgs parses "<channel> <giveawayID>" from the publish
// prompt reply.
func ParsePublishArgs(text string) (channel string, id uuid.UUID, err error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", uuid.Nil, fmt.Errorf("publish args %q: want channel and id", text)
	}
	id, err = uuid.Parse(fields[1])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("publish args id %q: %w", fields[1], err)
	}
	return fields[0], id, nil
}

// ParseDrawArgs parses "<giveawayID> <count>" from the end prompt reply.
// A missing field or a non-positive count wraps errDrawCount; an
// unparseable id wraps errDrawID.
func ParseDrawArgs(text string) (id uuid.UUID, count int, err error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return uuid.Nil, 0, fmt.Errorf("%w: got %q", errDrawCount, text)
	}
	id, err = uuid.Parse(fields[0])
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %q", errDrawID, fields[0])
	}
	count, err = strconv.Atoi(fields[1])
	if err != nil || count <= 0 {
		return uuid.Nil, 0, fmt.Errorf("%w: got %q", errDrawCount, fields[1])
	}
	return id, count, nil
}
