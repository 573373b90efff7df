package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ConversationState enumerates the handoff flow states for one sender.
type ConversationState string

const (
	// StateNone means no handoff in progress.
	StateNone ConversationState = ""

	// StateWaitingHandoff means the user pressed "talk to a human" and the
	// next text message becomes a ticket.
	StateWaitingHandoff ConversationState = "waiting_handoff"

	// StateDone means a ticket was recorded for the current cycle.
	StateDone ConversationState = "done"
)

// GetState returns the conversation state and sticky language for a sender.
// Unknown senders get StateNone and an empty language.
func (db *DB) GetState(ctx context.Context, sender string) (ConversationState, string, error) {
	var state, lang string
	err := db.conn.QueryRowContext(ctx,
		`SELECT state, lang FROM conversation_state WHERE sender = ?`, sender,
	).Scan(&state, &lang)
	if errors.Is(err, sql.ErrNoRows) {
		return StateNone, "", nil
	}
	if err != nil {
		return StateNone, "", fmt.Errorf("failed to get conversation state: %w", err)
	}
	return ConversationState(state), lang, nil
}

// SetState upserts the conversation state for a sender, preserving the
// stored language.
func (db *DB) SetState(ctx context.Context, sender string, state ConversationState) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO conversation_state (sender, state, lang, updated_at)
		VALUES (?, ?, '', ?)
		ON CONFLICT(sender) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		sender, string(state), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set conversation state: %w", err)
	}
	return nil
}

// SetLang upserts the sticky language for a sender, preserving the state.
func (db *DB) SetLang(ctx context.Context, sender, lang string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO conversation_state (sender, state, lang, updated_at)
		VALUES (?, '', ?, ?)
		ON CONFLICT(sender) DO UPDATE SET lang = excluded.lang, updated_at = excluded.updated_at`,
		sender, lang, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return nil
}

// PruneState deletes state rows untouched for longer than retention.
func (db *DB) PruneState(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM conversation_state WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune conversation state: %w", err)
	}
	return res.RowsAffected()
}
