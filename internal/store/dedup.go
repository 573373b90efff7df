package store

import (
	"context"
	"fmt"
	"time"
)

// MarkProcessed records a webhook message id. It returns true when the id
// was new, false when it was already recorded (a replayed delivery).
// INSERT OR IGNORE makes the check-and-set atomic.
func (db *DB) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_messages (message_id, processed_at) VALUES (?, ?)`,
		messageID, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark message processed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// PruneProcessed deletes processed message ids older than retention and
// returns the number removed.
func (db *DB) PruneProcessed(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM processed_messages WHERE processed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune processed messages: %w", err)
	}
	return res.RowsAffected()
}
