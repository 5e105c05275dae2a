// ABOUTME: Resolves an HR_ID to the Google contact that carries it
// ABOUTME: Linear scan over one page of connections, first match wins
package sync

import (
	"context"
	"log"

	"google.golang.org/api/people/v1"
)

// ContactRef identifies a remote contact.
type ContactRef struct {
	ResourceName string
	Etag         string
}

// FindContactByHRID returns the first contact, in list order, whose HR_ID
// custom field equals hrID. Duplicate HR_IDs are not detected.
//
// A failed list call is logged and reported as not found, so callers cannot
// tell an outage from a missing contact. Only the first page of connections
// is scanned.
func FindContactByHRID(ctx context.Context, dir Directory, hrID string, logger *log.Logger) *ContactRef {
	contacts, err := dir.ListContacts(ctx, LookupPersonFields)
	if err != nil {
		logger.Printf("✗ Error finding contact by HR_ID: %v", err)
		return nil
	}

	for _, person := range contacts {
		if person == nil {
			continue
		}
		if hasCustomField(person, KeyHRID, hrID) {
			return &ContactRef{
				ResourceName: person.ResourceName,
				Etag:         person.Etag,
			}
		}
	}

	return nil
}

func hasCustomField(person *people.Person, key, value string) bool {
	for _, field := range person.UserDefined {
		if field != nil && field.Key == key && field.Value == value {
			return true
		}
	}
	return false
}
