// ABOUTME: Database operations for the webhook_events log
// ABOUTME: Records dispatch outcomes and lists recent events for the status command
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/peoplesync/models"
)

// RecordEvent inserts one webhook event.
func RecordEvent(ctx context.Context, db *sql.DB, event *models.SyncEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, action, hr_id, resource_name, outcome, error_message, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID.String(),
		event.Action,
		nullString(event.HRID),
		nullString(event.ResourceName),
		string(event.Outcome),
		nullString(event.ErrorMessage),
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}

// RecentEvents returns the newest events first.
func RecentEvents(db *sql.DB, limit int) ([]models.SyncEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, action, hr_id, resource_name, outcome, error_message, received_at
		FROM webhook_events
		ORDER BY received_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.SyncEvent
	for rows.Next() {
		var event models.SyncEvent
		var id string
		var hrID, resourceName, errorMessage sql.NullString
		var outcome string

		if err := rows.Scan(&id, &event.Action, &hrID, &resourceName, &outcome, &errorMessage, &event.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan webhook event: %w", err)
		}

		event.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", id, err)
		}
		event.Outcome = models.Outcome(outcome)
		event.HRID = hrID.String
		event.ResourceName = resourceName.String
		event.ErrorMessage = errorMessage.String

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook events: %w", err)
	}

	return events, nil
}

// EventRecorder writes dispatcher outcomes to the event log and keeps the
// contacts sync_state current.
type EventRecorder struct {
	db *sql.DB
}

func NewEventRecorder(database *sql.DB) *EventRecorder {
	return &EventRecorder{db: database}
}

func (r *EventRecorder) RecordEvent(ctx context.Context, event *models.SyncEvent) error {
	if err := RecordEvent(ctx, r.db, event); err != nil {
		return err
	}

	if event.Outcome == models.OutcomeFailed {
		msg := event.ErrorMessage
		return UpdateSyncStatus(r.db, ContactsService, models.SyncStatusError, &msg)
	}
	return UpdateSyncStatus(r.db, ContactsService, models.SyncStatusIdle, nil)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
