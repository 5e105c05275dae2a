// ABOUTME: Airtable webhook wire format and loosely-typed field values
// ABOUTME: Maps Airtable column names onto RecordFields
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// WebhookPayload is the body Airtable automations POST to /webhook.
type WebhookPayload struct {
	Action    string        `json:"action"`
	Record    WebhookRecord `json:"record"`
	ContactID string        `json:"contact_id,omitempty"`
}

// WebhookRecord carries the Airtable row.
type WebhookRecord struct {
	ID        string         `json:"id,omitempty"`
	ContactID string         `json:"contact_id,omitempty"`
	Fields    AirtableFields `json:"fields"`
}

// AirtableFields are the Airtable column names we understand.
type AirtableFields struct {
	FullName   *FieldValue `json:"FullName,omitempty"`
	Email      *FieldValue `json:"Email,omitempty"`
	Mobile     *FieldValue `json:"Mobile,omitempty"`
	City       *FieldValue `json:"City,omitempty"`
	Country    *FieldValue `json:"Country,omitempty"`
	HRID       *FieldValue `json:"HR_ID,omitempty"`
	LastSynced *FieldValue `json:"LastSynced,omitempty"`
	NeedsSync  *FieldValue `json:"NeedsSync,omitempty"`
}

// Event normalizes the payload into an InboundEvent.
func (p *WebhookPayload) Event() InboundEvent {
	f := p.Record.Fields

	contactID := p.Record.ContactID
	if contactID == "" {
		contactID = p.ContactID
	}

	return InboundEvent{
		Action: Action(p.Action),
		Record: RecordFields{
			Name:       f.FullName,
			Email:      f.Email,
			Phone:      f.Mobile,
			City:       f.City,
			Country:    f.Country,
			HRID:       f.HRID,
			LastSynced: f.LastSynced,
			NeedsSync:  f.NeedsSync,
			ContactID:  contactID,
		},
	}
}

// FieldValue holds one Airtable cell. Airtable sends strings, numbers,
// booleans, and for some column types arrays or objects.
type FieldValue struct {
	raw interface{}
}

// StringValue returns a FieldValue wrapping s.
func StringValue(s string) *FieldValue {
	return &FieldValue{raw: s}
}

// BoolValue returns a FieldValue wrapping b.
func BoolValue(b bool) *FieldValue {
	return &FieldValue{raw: b}
}

// UnmarshalJSON keeps numbers as their literal text. JSON null never reaches
// here for pointer fields; the pointer is left nil instead.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode field value: %w", err)
	}

	v.raw = raw
	return nil
}

// MarshalJSON writes the value back in its original JSON type.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// String renders the value the way the sync stores it on the contact:
// strings verbatim, booleans as True/False, numbers as sent.
func (v *FieldValue) String() string {
	if v == nil || v.raw == nil {
		return ""
	}

	switch val := v.raw.(type) {
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// Present reports whether the value counts as filled in: a non-empty string,
// true, a non-zero number, or a non-empty list or object.
func (v *FieldValue) Present() bool {
	if v == nil || v.raw == nil {
		return false
	}

	switch val := v.raw.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
