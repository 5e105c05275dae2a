// ABOUTME: Tests for the webhook HTTP server
// ABOUTME: Drives the full request path against an in-memory contacts directory
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harperreed/peoplesync/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"
)

type memoryDirectory struct {
	contacts  []*people.Person
	createErr error

	created []*people.Person
	lists   int
	updated []string
	deleted []string
}

func (m *memoryDirectory) CreateContact(ctx context.Context, person *people.Person) (*people.Person, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, person)
	return &people.Person{ResourceName: "people/c1"}, nil
}

func (m *memoryDirectory) ListContacts(ctx context.Context, personFields string) ([]*people.Person, error) {
	m.lists++
	return m.contacts, nil
}

func (m *memoryDirectory) UpdateContact(ctx context.Context, resourceName string, person *people.Person, updatePersonFields string) (*people.Person, error) {
	m.updated = append(m.updated, resourceName)
	return person, nil
}

func (m *memoryDirectory) DeleteContact(ctx context.Context, resourceName string) error {
	m.deleted = append(m.deleted, resourceName)
	return nil
}

func newTestServer(t *testing.T, dir sync.Directory, opts Options) (http.Handler, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	opts.Logger = logger

	dispatcher := sync.NewDispatcher(dir, nil, logger)
	return NewServer(dispatcher, opts).Handler(), &buf
}

func postWebhook(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWebhook_CreateContact(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"create","record":{"fields":{"FullName":"Jane Doe","Email":"jane@x.com","HR_ID":"HR1"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success"}, decodeBody(t, rec))

	require.Len(t, dir.created, 1)
	person := dir.created[0]
	assert.Equal(t, "Jane Doe", person.Names[0].GivenName)
	assert.Equal(t, "jane@x.com", person.EmailAddresses[0].Value)
	require.Len(t, person.UserDefined, 1)
	assert.Equal(t, "HR_ID", person.UserDefined[0].Key)
	assert.Equal(t, "HR1", person.UserDefined[0].Value)
	assert.Empty(t, person.PhoneNumbers)
	assert.Empty(t, person.Addresses)
}

func TestWebhook_UpdateNotFoundStillSucceeds(t *testing.T) {
	dir := &memoryDirectory{
		contacts: []*people.Person{{
			ResourceName: "people/c1",
			UserDefined:  []*people.UserDefined{{Key: "HR_ID", Value: "HR1"}},
		}},
	}
	h, logs := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"update","record":{"fields":{"HR_ID":"HR404"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success"}, decodeBody(t, rec))
	assert.Equal(t, 1, dir.lists)
	assert.Empty(t, dir.updated)
	assert.Contains(t, logs.String(), "HR404 not found")
}

func TestWebhook_UpdateFound(t *testing.T) {
	dir := &memoryDirectory{
		contacts: []*people.Person{{
			ResourceName: "people/c1",
			UserDefined:  []*people.UserDefined{{Key: "HR_ID", Value: "HR1"}},
		}},
	}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"update","record":{"fields":{"HR_ID":"HR1","City":"Lisbon"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"people/c1"}, dir.updated)
}

func TestWebhook_RemoteFailure(t *testing.T) {
	dir := &memoryDirectory{createErr: errors.New("googleapi: Error 403: quota exceeded")}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"create","record":{"fields":{"FullName":"Jane Doe"}}}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{
		"status":  "error",
		"message": "googleapi: Error 403: quota exceeded",
	}, decodeBody(t, rec))
}

func TestWebhook_DeleteUsesContactID(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"delete","record":{"contact_id":"people/c55","fields":{"HR_ID":"HR1"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"people/c55"}, dir.deleted)
	assert.Equal(t, 0, dir.lists)
}

func TestWebhook_DeleteWithoutContactID(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"delete","record":{"fields":{}}}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, sync.ErrMissingContactID.Error(), body["message"])
	assert.Empty(t, dir.deleted)
}

func TestWebhook_UnknownActionSucceeds(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"archive","record":{"fields":{"FullName":"Jane"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dir.created)
}

func TestWebhook_EmptyCreateSucceedsWithoutRemoteCall(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{})

	rec := postWebhook(t, h, `{"action":"create","record":{"fields":{"HR_ID":"HR1"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dir.created)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	h, _ := newTestServer(t, &memoryDirectory{}, Options{})

	rec := postWebhook(t, h, `{"action":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "invalid JSON payload")
}

func TestWebhook_BodyLimit(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{MaxBodyBytes: 32})

	rec := postWebhook(t, h, `{"action":"create","record":{"fields":{"FullName":"A very long name that does not fit"}}}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, dir.created)
}

func TestWebhook_Secret(t *testing.T) {
	dir := &memoryDirectory{}
	h, _ := newTestServer(t, dir, Options{WebhookSecret: "s3cret"})
	body := `{"action":"create","record":{"fields":{"FullName":"Jane"}}}`

	rec := postWebhook(t, h, body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, dir.created)

	rec = postWebhook(t, h, body, map[string]string{WebhookSecretHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(t, h, body, map[string]string{WebhookSecretHeader: "s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dir.created, 1)
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t, &memoryDirectory{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	h, logs := newTestServer(t, &memoryDirectory{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, HealthMessage, string(body))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), "GET / 200")
}

func TestRequestIDPreserved(t *testing.T) {
	h, _ := newTestServer(t, &memoryDirectory{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "airtable-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "airtable-123", rec.Header().Get(RequestIDHeader))
}

func TestUnknownPathNotFound(t *testing.T) {
	h, _ := newTestServer(t, &memoryDirectory{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
