// ABOUTME: Test doubles for the sync package
// ABOUTME: In-memory Directory and Recorder plus a buffer logger
package sync

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/harperreed/peoplesync/models"
	"google.golang.org/api/people/v1"
)

type updateCall struct {
	resourceName string
	person       *people.Person
	fields       string
}

// fakeDirectory records every call and returns canned data.
type fakeDirectory struct {
	contacts []*people.Person

	createErr error
	listErr   error
	updateErr error
	deleteErr error

	created   []*people.Person
	listCalls []string
	updated   []updateCall
	deleted   []string
}

func (f *fakeDirectory) CreateContact(ctx context.Context, person *people.Person) (*people.Person, error) {
	f.created = append(f.created, person)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &people.Person{ResourceName: "people/c100"}, nil
}

func (f *fakeDirectory) ListContacts(ctx context.Context, personFields string) ([]*people.Person, error) {
	f.listCalls = append(f.listCalls, personFields)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contacts, nil
}

func (f *fakeDirectory) UpdateContact(ctx context.Context, resourceName string, person *people.Person, updatePersonFields string) (*people.Person, error) {
	f.updated = append(f.updated, updateCall{resourceName: resourceName, person: person, fields: updatePersonFields})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return person, nil
}

func (f *fakeDirectory) DeleteContact(ctx context.Context, resourceName string) error {
	f.deleted = append(f.deleted, resourceName)
	return f.deleteErr
}

// fakeRecorder keeps recorded events in memory.
type fakeRecorder struct {
	events []*models.SyncEvent
	err    error
}

func (r *fakeRecorder) RecordEvent(ctx context.Context, event *models.SyncEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func contactWithHRID(resourceName, hrID string) *people.Person {
	return &people.Person{
		ResourceName: resourceName,
		Etag:         "etag-" + resourceName,
		UserDefined: []*people.UserDefined{
			{Key: KeyHRID, Value: hrID},
		},
	}
}

func testLogger(t *testing.T) (*log.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}
