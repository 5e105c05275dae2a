// ABOUTME: Google People API client for contacts sync
// ABOUTME: Creates the authenticated People API service used for the process lifetime
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// NewPeopleClient creates a new Google People API client.
func NewPeopleClient(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*people.Service, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	client := oauth2.NewClient(ctx, ts)
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)

	service, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return service, nil
}
