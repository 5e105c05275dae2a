// ABOUTME: CLI command that posts a webhook event to a running server
// ABOUTME: Mirrors the payload the Airtable automation script sends
package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/peoplesync/models"
	"github.com/harperreed/peoplesync/web"
)

// SendCommand builds a webhook payload from flags and POSTs it.
func SendCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(out)
	target := fs.String("url", "http://localhost:8080/webhook", "Webhook URL")
	secret := fs.String("secret", "", "Shared webhook secret")
	action := fs.String("action", "create", "Action: create, update, or delete")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Mobile number")
	city := fs.String("city", "", "City")
	country := fs.String("country", "", "Country")
	hrID := fs.String("hr-id", "", "HR ID")
	lastSynced := fs.String("last-synced", "", "Last synced date")
	needsSync := fs.String("needs-sync", "", "Needs sync flag (true or false)")
	contactID := fs.String("contact-id", "", "Google contact resource name (delete)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload := models.WebhookPayload{
		Action: *action,
		Record: models.WebhookRecord{
			ContactID: *contactID,
			Fields: models.AirtableFields{
				FullName:   optionalString(*name),
				Email:      optionalString(*email),
				Mobile:     optionalString(*phone),
				City:       optionalString(*city),
				Country:    optionalString(*country),
				HRID:       optionalString(*hrID),
				LastSynced: optionalString(*lastSynced),
			},
		},
	}

	if *needsSync != "" {
		b, err := strconv.ParseBool(*needsSync)
		if err != nil {
			return fmt.Errorf("invalid --needs-sync %q: %w", *needsSync, err)
		}
		payload.Record.Fields.NeedsSync = models.BoolValue(b)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		req.Header.Set(web.WebhookSecretHeader, *secret)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook failed (%d): %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	_, _ = fmt.Fprintf(out, "✓ Webhook sent successfully: %s\n", bytes.TrimSpace(respBody))
	return nil
}

func optionalString(s string) *models.FieldValue {
	if s == "" {
		return nil
	}
	return models.StringValue(s)
}
