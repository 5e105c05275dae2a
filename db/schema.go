// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation for sync state and the webhook event log
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT CHECK(status IN ('idle', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS webhook_events (
	id TEXT PRIMARY KEY,
	action TEXT NOT NULL,
	hr_id TEXT,
	resource_name TEXT,
	outcome TEXT NOT NULL CHECK(outcome IN ('created', 'updated', 'deleted', 'not_found', 'empty_payload', 'ignored', 'failed')),
	error_message TEXT,
	received_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_webhook_events_received_at ON webhook_events(received_at DESC);
CREATE INDEX IF NOT EXISTS idx_webhook_events_hr_id ON webhook_events(hr_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
