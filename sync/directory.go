// ABOUTME: Contacts directory abstraction over the Google People API
// ABOUTME: PeopleDirectory performs the four remote calls the sync needs
package sync

import (
	"context"
	"fmt"

	"google.golang.org/api/people/v1"
)

// Directory is the remote contacts service.
type Directory interface {
	CreateContact(ctx context.Context, person *people.Person) (*people.Person, error)
	ListContacts(ctx context.Context, personFields string) ([]*people.Person, error)
	UpdateContact(ctx context.Context, resourceName string, person *people.Person, updatePersonFields string) (*people.Person, error)
	DeleteContact(ctx context.Context, resourceName string) error
}

// PeopleDirectory talks to the authenticated user's Google Contacts.
type PeopleDirectory struct {
	service  *people.Service
	pageSize int64
}

// NewPeopleDirectory wraps a People service. pageSize 0 leaves the
// service default in place.
func NewPeopleDirectory(service *people.Service, pageSize int64) *PeopleDirectory {
	return &PeopleDirectory{
		service:  service,
		pageSize: pageSize,
	}
}

func (d *PeopleDirectory) CreateContact(ctx context.Context, person *people.Person) (*people.Person, error) {
	created, err := d.service.People.CreateContact(person).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return created, nil
}

// ListContacts returns the first page of connections only; the next page
// token is ignored.
func (d *PeopleDirectory) ListContacts(ctx context.Context, personFields string) ([]*people.Person, error) {
	call := d.service.People.Connections.List("people/me").
		PersonFields(personFields).
		Context(ctx)

	if d.pageSize > 0 {
		call = call.PageSize(d.pageSize)
	}

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	if response == nil {
		return nil, nil
	}

	return response.Connections, nil
}

func (d *PeopleDirectory) UpdateContact(ctx context.Context, resourceName string, person *people.Person, updatePersonFields string) (*people.Person, error) {
	updated, err := d.service.People.UpdateContact(resourceName, person).
		UpdatePersonFields(updatePersonFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update contact %s: %w", resourceName, err)
	}
	return updated, nil
}

func (d *PeopleDirectory) DeleteContact(ctx context.Context, resourceName string) error {
	if _, err := d.service.People.DeleteContact(resourceName).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", resourceName, err)
	}
	return nil
}
