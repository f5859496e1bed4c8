// Package archive persists completed draws to Postgres. The history is
// write-only from the bot's perspective; operators query it directly.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/giveabot/internal/giveaway"
)

const insertDrawQuery = `
	INSERT INTO draw_history (
		giveaway_id, owner_id, channel, caption,
		winner_id, winner_username, participant_count, drawn_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Archive writes draw history rows through a shared sqlx pool.
type Archive struct {
	db *sqlx.DB
}

// New builds the Postgres-backed draw archive.
func New(db *sqlx.DB) *Archive {
	return &Archive{db: db}
}

// RecordDraw appends one row per winner for the completed draw.
func (a *Archive) RecordDraw(ctx context.Context, rec giveaway.Record, winners []giveaway.Identity) error {
	drawnAt := time.Now().UTC()
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range winners {
		if _, err := tx.ExecContext(ctx, insertDrawQuery,
			rec.ID.String(), rec.Owner.ID, rec.ChannelID, rec.Text,
			w.ID, w.Username, len(rec.Participants), drawnAt,
		); err != nil {
			return fmt.Errorf("archive insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	return nil
}
