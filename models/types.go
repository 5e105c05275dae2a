// ABOUTME: Data models for webhook events and the sync audit log
// ABOUTME: Defines actions, outcomes, RecordFields, and SyncEvent structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// Action is the kind of change reported by the record-keeping system.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Outcome describes what the dispatcher did with one event.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeUpdated      Outcome = "updated"
	OutcomeDeleted      Outcome = "deleted"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeEmptyPayload Outcome = "empty_payload"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeFailed       Outcome = "failed"
)

// RecordFields is the normalized view of one employee record.
// A nil field means the key was absent or null in the webhook body.
type RecordFields struct {
	Name       *FieldValue
	Email      *FieldValue
	Phone      *FieldValue
	City       *FieldValue
	Country    *FieldValue
	HRID       *FieldValue
	LastSynced *FieldValue
	NeedsSync  *FieldValue
	ContactID  string
}

// InboundEvent is one webhook delivery after normalization.
type InboundEvent struct {
	Action Action
	Record RecordFields
}

// SyncEvent is one row of the webhook event log.
type SyncEvent struct {
	ID           uuid.UUID `json:"id"`
	Action       string    `json:"action"`
	HRID         string    `json:"hr_id,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	Outcome      Outcome   `json:"outcome"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// SyncStatus values stored in sync_state.
const (
	SyncStatusIdle  = "idle"
	SyncStatusError = "error"
)
