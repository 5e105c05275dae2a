// ABOUTME: Dispatches webhook events to create, update, or delete Google contacts
// ABOUTME: Records each outcome and returns only remote failures as errors
package sync

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/peoplesync/models"
)

// ErrMissingContactID is returned for a delete without a contact_id.
var ErrMissingContactID = errors.New("contact_id is required for delete")

// Recorder stores the outcome of each dispatched event.
type Recorder interface {
	RecordEvent(ctx context.Context, event *models.SyncEvent) error
}

// Result is what happened to one event.
type Result struct {
	Action       models.Action
	Outcome      models.Outcome
	ResourceName string
}

// Dispatcher applies inbound events to a Directory. It holds no per-request
// state and is safe for concurrent use if the Directory is.
type Dispatcher struct {
	dir      Directory
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher. recorder may be nil.
func NewDispatcher(dir Directory, recorder Recorder, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		dir:      dir,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch routes one event. A non-nil error means a remote call failed (or a
// delete had no contact_id); every other outcome, including not found and
// empty payloads, is reported through Result.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.InboundEvent) (*Result, error) {
	var (
		result *Result
		err    error
	)

	switch event.Action {
	case models.ActionCreate:
		result, err = d.Create(ctx, event.Record)
	case models.ActionUpdate:
		result, err = d.Update(ctx, event.Record)
	case models.ActionDelete:
		result, err = d.Delete(ctx, event.Record)
	default:
		result = &Result{Action: event.Action, Outcome: models.OutcomeIgnored}
	}

	d.record(ctx, event, result, err)

	return result, err
}

// Create adds a new contact built from rec.
func (d *Dispatcher) Create(ctx context.Context, rec models.RecordFields) (*Result, error) {
	person := BuildCreatePayload(rec)
	if person == nil {
		d.logger.Printf("✗ No valid fields provided. Contact cannot be created.")
		return &Result{Action: models.ActionCreate, Outcome: models.OutcomeEmptyPayload}, nil
	}

	created, err := d.dir.CreateContact(ctx, person)
	if err != nil {
		return nil, err
	}

	d.logger.Printf("✓ Contact created with HR_ID: %s, Google Contact ID: %s", rec.HRID.String(), created.ResourceName)

	return &Result{
		Action:       models.ActionCreate,
		Outcome:      models.OutcomeCreated,
		ResourceName: created.ResourceName,
	}, nil
}

// Update overwrites the contact whose HR_ID matches rec.HRID.
func (d *Dispatcher) Update(ctx context.Context, rec models.RecordFields) (*Result, error) {
	notFound := &Result{Action: models.ActionUpdate, Outcome: models.OutcomeNotFound}

	if !rec.HRID.Present() {
		d.logger.Printf("⚠️ Update without HR_ID, nothing to match")
		return notFound, nil
	}
	hrID := rec.HRID.String()

	ref := FindContactByHRID(ctx, d.dir, hrID, d.logger)
	if ref == nil {
		d.logger.Printf("⚠️ Contact with HR_ID %s not found in Google Contacts.", hrID)
		return notFound, nil
	}

	person := BuildUpdatePayload(rec, ref.Etag)
	if _, err := d.dir.UpdateContact(ctx, ref.ResourceName, person, UpdatePersonFields); err != nil {
		return nil, err
	}

	d.logger.Printf("✓ Contact updated successfully: %s", ref.ResourceName)

	return &Result{
		Action:       models.ActionUpdate,
		Outcome:      models.OutcomeUpdated,
		ResourceName: ref.ResourceName,
	}, nil
}

// Delete removes the contact named by rec.ContactID. No lookup is done.
func (d *Dispatcher) Delete(ctx context.Context, rec models.RecordFields) (*Result, error) {
	if rec.ContactID == "" {
		return nil, ErrMissingContactID
	}

	if err := d.dir.DeleteContact(ctx, rec.ContactID); err != nil {
		return nil, err
	}

	d.logger.Printf("✓ Contact deleted in Google Contacts: %s", rec.ContactID)

	return &Result{
		Action:       models.ActionDelete,
		Outcome:      models.OutcomeDeleted,
		ResourceName: rec.ContactID,
	}, nil
}

func (d *Dispatcher) record(ctx context.Context, event models.InboundEvent, result *Result, dispatchErr error) {
	if d.recorder == nil {
		return
	}

	entry := &models.SyncEvent{
		ID:         uuid.New(),
		Action:     string(event.Action),
		HRID:       event.Record.HRID.String(),
		ReceivedAt: d.now(),
	}

	if dispatchErr != nil {
		entry.Outcome = models.OutcomeFailed
		entry.ErrorMessage = dispatchErr.Error()
		entry.ResourceName = event.Record.ContactID
	} else {
		entry.Outcome = result.Outcome
		entry.ResourceName = result.ResourceName
	}

	if err := d.recorder.RecordEvent(context.WithoutCancel(ctx), entry); err != nil {
		d.logger.Printf("✗ Failed to record %s event %s: %v", entry.Action, entry.ID, err)
	}
}
