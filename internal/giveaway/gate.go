package giveaway

import (
	"context"

	"github.com/google/uuid"
	"log/slog"

	"github.com/m3rciful/giveabot/core/logger"
)

// JoinResult reports the outcome of a join attempt.
type JoinResult int

const (
	// JoinOK means the identity was appended to the pool.
	JoinOK JoinResult = iota
	// JoinAlready means the identity was already in the pool; nothing changed.
	JoinAlready
	// JoinGone means the giveaway no longer exists; the click is ignored.
	JoinGone
)

// Gate handles inbound join clicks. A join is idempotent per identity:
// repeated clicks never grow the pool after the first success.
//
// The membership check and the write are two separate store calls, so
// two simultaneous first-time clicks by the same identity can race past
// the check. That window is accepted here; closing it belongs in the
// store as a conditional write, not in this read path.
type Gate struct {
	store     Store
	tp        Transport
	shareBase string
}

// NewGate wires the participation gate.
func NewGate(store Store, tp Transport) *Gate {
	return &Gate{store: store, tp: tp}
}

// SetShareBase mirrors Service.SetShareBase: counter refreshes replace
// the whole announcement markup, so the gate has to rebuild the
// deep-link button too.
func (g *Gate) SetShareBase(url string) {
	g.shareBase = url
}

// Join resolves the giveaway by owner and id and appends the identity to
// its pool. After a successful append the join-button counter on the
// published announcement is refreshed; a failed refresh does not undo
// the join.
func (g *Gate) Join(ctx context.Context, ownerID int64, id uuid.UUID, who Identity) (JoinResult, error) {
	rec, ok, err := g.store.Get(ctx, ownerID, id)
	if err != nil {
		return JoinGone, err
	}
	if !ok {
		// The giveaway may have ended; nothing to report to the clicker.
		return JoinGone, nil
	}
	if rec.HasParticipant(who.ID) {
		return JoinAlready, nil
	}

	rec.Participants = append(rec.Participants, who)
	if err := g.store.Insert(ctx, ownerID, rec, 0); err != nil {
		return JoinGone, err
	}

	logger.SVCJoin.Info("participant joined",
		slog.String("event", "join.accept"),
		slog.String("giveaway_id", rec.ID.String()),
		slog.Int64("owner_id", ownerID),
		slog.Int64("user_id", who.ID),
		slog.Int("participants", len(rec.Participants)),
	)

	if rec.Published() {
		join := joinButton(g.shareBase, ownerID, rec)
		if err := g.tp.EditJoinButton(ctx, rec.ChannelChatID, rec.AnnouncementID, join); err != nil {
			logger.SVCJoin.Warn("counter refresh failed",
				slog.String("event", "join.counter"),
				slog.String("giveaway_id", rec.ID.String()),
				slog.String("err", err.Error()),
			)
		}
	}
	return JoinOK, nil
}
