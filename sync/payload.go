// ABOUTME: Builds People API contact payloads from webhook record fields
// ABOUTME: Create payloads include only filled fields; update payloads include all of them
package sync

import (
	"github.com/harperreed/peoplesync/models"
	"google.golang.org/api/people/v1"
)

// Custom field keys stored in the contact's userDefined list.
const (
	KeyHRID       = "HR_ID"
	KeyLastSynced = "LastSynced"
	KeyNeedsSync  = "NeedsSync"
)

const (
	// LookupPersonFields is requested when scanning contacts for an HR_ID.
	LookupPersonFields = "names,emailAddresses,phoneNumbers,userDefined"

	// UpdatePersonFields is the field mask sent with every update.
	UpdatePersonFields = "names,emailAddresses,phoneNumbers,addresses,userDefined"
)

// BuildCreatePayload maps a record onto a new contact. It returns nil when
// none of name, email, phone, city, or country is filled in; custom fields
// alone never make a contact.
func BuildCreatePayload(rec models.RecordFields) *people.Person {
	person := &people.Person{}
	populated := false

	if rec.Name.Present() {
		person.Names = []*people.Name{{GivenName: rec.Name.String()}}
		populated = true
	}
	if rec.Email.Present() {
		person.EmailAddresses = []*people.EmailAddress{{Value: rec.Email.String()}}
		populated = true
	}
	if rec.Phone.Present() {
		person.PhoneNumbers = []*people.PhoneNumber{{Value: rec.Phone.String()}}
		populated = true
	}
	if rec.City.Present() || rec.Country.Present() {
		person.Addresses = []*people.Address{{
			City:    rec.City.String(),
			Country: rec.Country.String(),
		}}
		populated = true
	}

	if !populated {
		return nil
	}

	var custom []*people.UserDefined
	if rec.HRID.Present() {
		custom = append(custom, &people.UserDefined{Key: KeyHRID, Value: rec.HRID.String()})
	}
	if rec.LastSynced.Present() {
		custom = append(custom, &people.UserDefined{Key: KeyLastSynced, Value: rec.LastSynced.String()})
	}
	// false is still sent; only a missing value is skipped
	if rec.NeedsSync != nil {
		custom = append(custom, &people.UserDefined{Key: KeyNeedsSync, Value: rec.NeedsSync.String()})
	}

	if len(custom) > 0 {
		person.UserDefined = custom
	}

	return person
}

// BuildUpdatePayload maps a record onto a full replacement of every field in
// UpdatePersonFields. Empty values are forced onto the wire so the remote
// copy is overwritten rather than left untouched.
func BuildUpdatePayload(rec models.RecordFields, etag string) *people.Person {
	return &people.Person{
		Etag: etag,
		Names: []*people.Name{{
			GivenName:       rec.Name.String(),
			ForceSendFields: []string{"GivenName"},
		}},
		EmailAddresses: []*people.EmailAddress{{
			Value:           rec.Email.String(),
			ForceSendFields: []string{"Value"},
		}},
		PhoneNumbers: []*people.PhoneNumber{{
			Value:           rec.Phone.String(),
			ForceSendFields: []string{"Value"},
		}},
		Addresses: []*people.Address{{
			City:            rec.City.String(),
			Country:         rec.Country.String(),
			ForceSendFields: []string{"City", "Country"},
		}},
		UserDefined: []*people.UserDefined{
			userDefined(KeyHRID, rec.HRID.String()),
			userDefined(KeyLastSynced, rec.LastSynced.String()),
			userDefined(KeyNeedsSync, rec.NeedsSync.String()),
		},
	}
}

func userDefined(key, value string) *people.UserDefined {
	return &people.UserDefined{
		Key:             key,
		Value:           value,
		ForceSendFields: []string{"Value"},
	}
}

