package store

import "database/sql"

// initSchema creates tables and indexes if they do not exist.
func initSchema(conn *sql.DB) error {
	schema := `
	-- Handoff tickets
	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		sender TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		schedule TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT 'NochGPT'
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_tickets_sender ON tickets(sender);

	-- Webhook message ids already handled, for replay dedup
	CREATE TABLE IF NOT EXISTS processed_messages (
		message_id TEXT PRIMARY KEY,
		processed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_messages(processed_at);

	-- Per-sender conversation state and sticky language
	CREATE TABLE IF NOT EXISTS conversation_state (
		sender TEXT PRIMARY KEY,
		state TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`

	_, err := conn.Exec(schema)
	return err
}
