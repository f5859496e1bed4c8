package giveaway

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"log/slog"

	"github.com/m3rciful/giveabot/core/logger"
	"github.com/m3rciful/giveabot/internal/random"
)

// Archiver records completed draws durably. Failures are logged, not
// propagated: losing a history row must not fail the draw itself.
type Archiver interface {
	RecordDraw(ctx context.Context, rec Record, winners []Identity) error
}

// Service owns the giveaway lifecycle: create, publish, cancel, list and
// draw. Every operation is scoped to one organizer's storage key; the
// store is the system of record between calls.
type Service struct {
	store     Store
	tp        Transport
	archive   Archiver
	shareBase string
}

// NewService wires the lifecycle service. archive may be nil.
func NewService(store Store, tp Transport, archive Archiver) *Service {
	return &Service{store: store, tp: tp, archive: archive}
}

// SetShareBase sets the public bot link attached to published
// announcements as a deep-link button.
func (s *Service) SetShareBase(url string) {
	s.shareBase = url
}

// joinButton builds the announcement controls for the record's current
// participant count.
func joinButton(shareBase string, ownerID int64, rec Record) JoinButton {
	id := rec.ID.String()
	return JoinButton{
		Label:    JoinLabel(len(rec.Participants)),
		Payload:  JoinPayload(ownerID, id),
		ShareURL: ShareURL(shareBase, ownerID, id),
	}
}

// Create builds a fresh unpublished record and persists it with no TTL.
func (s *Service) Create(ctx context.Context, text, photoID string, owner Identity) (Record, error) {
	rec := NewRecord(text, photoID, owner)
	if err := s.store.Insert(ctx, owner.ID, rec, 0); err != nil {
		return Record{}, err
	}
	logger.SVCGiveaways.Info("giveaway created",
		slog.String("event", "giveaway.create"),
		slog.String("giveaway_id", rec.ID.String()),
		slog.Int64("owner_id", owner.ID),
	)
	return rec, nil
}

// Publish posts the announcement with its join control to the channel
// and persists the publication references. The record is only written
// after the announcement went out, so a transport failure leaves it
// unpublished and the operation can be retried whole.
func (s *Service) Publish(ctx context.Context, ownerID int64, id uuid.UUID, channel string) (Record, error) {
	rec, ok, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound
	}

	join := joinButton(s.shareBase, ownerID, rec)
	msgID, chatID, err := s.tp.SendPhoto(ctx, channel, rec.PhotoID, rec.Text, &join)
	if err != nil {
		return Record{}, transportErr("publish", err)
	}

	rec.ChannelID = channel
	rec.ChannelChatID = chatID
	rec.AnnouncementID = msgID
	if err := s.store.Insert(ctx, ownerID, rec, 0); err != nil {
		return Record{}, err
	}
	logger.SVCGiveaways.Info("giveaway published",
		slog.String("event", "giveaway.publish"),
		slog.String("giveaway_id", rec.ID.String()),
		slog.Int64("owner_id", ownerID),
		slog.String("channel", channel),
	)
	return rec, nil
}

// Cancel removes the record unconditionally. Cancelling an unknown id is
// a harmless no-op.
func (s *Service) Cancel(ctx context.Context, ownerID int64, id uuid.UUID) error {
	if err := s.store.Remove(ctx, ownerID, id); err != nil {
		return err
	}
	logger.SVCGiveaways.Info("giveaway cancelled",
		slog.String("event", "giveaway.cancel"),
		slog.String("giveaway_id", id.String()),
		slog.Int64("owner_id", ownerID),
	)
	return nil
}

// List returns every record for the organizer. An empty result is a
// normal state, not an error.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Record, error) {
	return s.store.GetAll(ctx, ownerID)
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, ownerID int64, id uuid.UUID) (Record, error) {
	rec, ok, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// DrawWinners samples min(count, pool) distinct winners uniformly at
// random without replacement and announces them to the organizer chat
// and, when published, to the channel. The record stays in place until
// the organizer finalizes or rerolls.
func (s *Service) DrawWinners(ctx context.Context, ownerID int64, organizerChat string, id uuid.UUID, count int) ([]Identity, error) {
	rec, ok, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	if len(rec.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	winners, err := sampleWinners(rec.Participants, count)
	if err != nil {
		return nil, err
	}

	text := winnersText(winners)
	if err := s.tp.SendText(ctx, organizerChat, text); err != nil {
		return nil, transportErr("announce winners", err)
	}
	if rec.Published() {
		if err := s.tp.SendText(ctx, rec.ChannelID, text); err != nil {
			return nil, transportErr("announce winners", err)
		}
	}

	if s.archive != nil {
		if err := s.archive.RecordDraw(ctx, rec, winners); err != nil {
			logger.SVCGiveaways.Warn("draw archive failed",
				slog.String("event", "giveaway.archive"),
				slog.String("giveaway_id", rec.ID.String()),
				slog.String("err", err.Error()),
			)
		}
	}

	logger.SVCGiveaways.Info("winners drawn",
		slog.String("event", "giveaway.draw"),
		slog.String("giveaway_id", rec.ID.String()),
		slog.Int64("owner_id", ownerID),
		slog.Int("participants", len(rec.Participants)),
		slog.Int("winners", len(winners)),
	)
	return winners, nil
}

// sampleWinners shuffles a copy of the pool and takes the first k
// entries, so every subset of size k is equally likely and nobody can be
// drawn twice.
func sampleWinners(pool []Identity, count int) ([]Identity, error) {
	shuffled := make([]Identity, len(pool))
	copy(shuffled, pool)
	if err := random.Shuffle(shuffled); err != nil {
		return nil, err
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count], nil
}

func winnersText(winners []Identity) string {
	var b strings.Builder
	if len(winners) == 1 {
		b.WriteString("🎉 The winner is:\n")
	} else {
		b.WriteString("🎉 The winners are:\n")
	}
	for _, w := range winners {
		b.WriteString(w.Mention())
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
