package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
)

// Ticket is one recorded handoff request. JSON field names follow the
// spreadsheet contract (ts/from/nombre/...), which the dashboard that
// consumes /tickets already understands.
type Ticket struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"-"`
	Timestamp int64     `json:"ts"`
	Sender    string    `json:"from"`
	Name      string    `json:"nombre"`
	Topic     string    `json:"tema"`
	Contact   string    `json:"contacto"`
	Schedule  string    `json:"horario"`
	Message   string    `json:"mensaje"`
	Label     string    `json:"label"`
}

// SaveTicket inserts a ticket, assigning an id and timestamps when missing.
func (db *DB) SaveTicket(ctx context.Context, t *Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.Timestamp = t.CreatedAt.Unix()
	if t.Label == "" {
		t.Label = "NochGPT"
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tickets (id, created_at, sender, name, topic, contact, schedule, message, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Timestamp, t.Sender, t.Name, t.Topic, t.Contact, t.Schedule, t.Message, t.Label,
	)
	if err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

// GetTicket returns the ticket with the given id.
func (db *DB) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, created_at, sender, name, topic, contact, schedule, message, label
		FROM tickets WHERE id = ?`, id)

	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

// ListTickets returns tickets newest first, up to limit (0 = all).
func (db *DB) ListTickets(ctx context.Context, limit int) ([]*Ticket, error) {
	query := `
		SELECT id, created_at, sender, name, topic, contact, schedule, message, label
		FROM tickets ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CountTicketsSince counts tickets created at or after the cutoff.
func (db *DB) CountTicketsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE created_at >= ?`, cutoff.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(&t.ID, &t.Timestamp, &t.Sender, &t.Name, &t.Topic,
		&t.Contact, &t.Schedule, &t.Message, &t.Label); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(t.Timestamp, 0)
	return &t, nil
}
