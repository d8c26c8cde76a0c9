package directory

import (
	"context"
	"time"
)

// User is a directory account as reported by the provider.
type User struct {
	ExternalID     string
	PrincipalName  string
	DisplayName    string
	GivenName      string
	Surname        string
	Mail           string
	JobTitle       string
	Department     string
	OfficeLocation string
}

// Event is a calendar entry as reported by the provider.
type Event struct {
	ExternalID     string
	Subject        string
	BodyPreview    string
	Start          time.Time
	End            time.Time
	Location       string
	IsAllDay       bool
	OrganizerEmail string
	OrganizerName  string
	// LastModified orders duplicate deliveries of the same event.
	LastModified time.Time
}

// Provider is the external directory and calendar source.
type Provider interface {
	// ListUsers returns every user in the directory. Paging is handled internally.
	ListUsers(ctx context.Context) ([]User, error)

	// ListUserEvents returns the calendar events of the user with principalName.
	ListUserEvents(ctx context.Context, principalName string) ([]Event, error)

	// HasEvents reports whether the user has at least one event without
	// fetching the full list. A missing user or a forbidden calendar yields
	// false with a nil error.
	HasEvents(ctx context.Context, principalName string) (bool, error)
}
