package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"calendar-sync/core/utils"
	"calendar-sync/feature/directory"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// CalendarFactory returns a Calendar service acting as principalName.
type CalendarFactory func(ctx context.Context, principalName string) (*calendar.Service, error)

// Client implements directory.Provider over Google Workspace.
type Client struct {
	admin       *admin.Service
	calendarFor CalendarFactory
	cfg         directory.GoogleConfig
	logger      *zap.Logger
}

var _ directory.Provider = (*Client)(nil)

// New creates a client from a service account key with domain-wide delegation.
// Directory reads impersonate the configured admin; calendar reads impersonate
// each user in turn.
func New(ctx context.Context, cfg directory.GoogleConfig, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	key, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	adminJWT, err := googleoauth.JWTConfigFromJSON(key, admin.AdminDirectoryUserReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	adminJWT.Subject = cfg.AdminEmail

	adminSvc, err := admin.NewService(ctx, option.WithHTTPClient(adminJWT.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create directory service: %w", err)
	}

	calendarFor := func(ctx context.Context, principalName string) (*calendar.Service, error) {
		conf, err := googleoauth.JWTConfigFromJSON(key, calendar.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		conf.Subject = principalName
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		return calendar.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	}

	return NewWithServices(cfg, adminSvc, calendarFor, logger), nil
}

// NewWithServices creates a client over prepared API services.
func NewWithServices(cfg directory.GoogleConfig, adminSvc *admin.Service, calendarFor CalendarFactory, logger *zap.Logger) *Client {
	if cfg.Customer == "" {
		cfg.Customer = "my_customer"
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	return &Client{admin: adminSvc, calendarFor: calendarFor, cfg: cfg, logger: logger}
}

// ListUsers pages through the Workspace directory.
func (c *Client) ListUsers(ctx context.Context) ([]directory.User, error) {
	var users []directory.User

	err := c.admin.Users.List().
		Customer(c.cfg.Customer).
		Projection("full").
		MaxResults(500).
		Pages(ctx, func(page *admin.Users) error {
			for _, u := range page.Users {
				users = append(users, toUser(u))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	c.logger.Debug("Fetched users from Google Workspace", zap.Int("count", len(users)))
	return users, nil
}

// ListUserEvents returns the expanded events of the user's calendar.
func (c *Client) ListUserEvents(ctx context.Context, principalName string) ([]directory.Event, error) {
	svc, err := c.calendarFor(ctx, principalName)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service for %s: %w", principalName, err)
	}

	var events []directory.Event
	err = svc.Events.List(c.cfg.CalendarID).
		SingleEvents(true).
		ShowDeleted(false).
		MaxResults(2500).
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				ev := toEvent(item)
				ev.ExternalID = eventKey(principalName, item.Id)
				events = append(events, ev)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", principalName, err)
	}

	return events, nil
}

// HasEvents asks for a single event id.
func (c *Client) HasEvents(ctx context.Context, principalName string) (bool, error) {
	svc, err := c.calendarFor(ctx, principalName)
	if err != nil {
		return false, fmt.Errorf("failed to create calendar service for %s: %w", principalName, err)
	}

	res, err := svc.Events.List(c.cfg.CalendarID).
		MaxResults(1).
		Fields("items(id)").
		Context(ctx).
		Do()

	var apiErr *googleapi.Error
	switch {
	case err == nil:
		return len(res.Items) > 0, nil
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound:
		c.logger.Debug("User not found or has no calendar", zap.String("principal", principalName))
		return false, nil
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden:
		c.logger.Warn("No permission to access calendar", zap.String("principal", principalName))
		return false, nil
	default:
		return false, fmt.Errorf("failed to check events for %s: %w", principalName, err)
	}
}

func toUser(u *admin.User) directory.User {
	out := directory.User{
		ExternalID:    u.Id,
		PrincipalName: u.PrimaryEmail,
		Mail:          u.PrimaryEmail,
	}
	if u.Name != nil {
		out.DisplayName = u.Name.FullName
		out.GivenName = u.Name.GivenName
		out.Surname = u.Name.FamilyName
	}
	out.DisplayName = utils.FirstNonEmpty(out.DisplayName, u.PrimaryEmail)
	if org := firstEntry(u.Organizations); org != nil {
		out.JobTitle = stringField(org, "title")
		out.Department = stringField(org, "department")
	}
	if loc := firstEntry(u.Locations); loc != nil {
		out.OfficeLocation = stringField(loc, "buildingId")
	}
	return out
}

// firstEntry returns the first object of a loosely typed JSON array field.
func firstEntry(v any) map[string]any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	entry, _ := list[0].(map[string]any)
	return entry
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func toEvent(item *calendar.Event) directory.Event {
	out := directory.Event{
		ExternalID:  item.Id,
		Subject:     item.Summary,
		BodyPreview: item.Description,
		Location:    item.Location,
	}

	var allDay bool
	out.Start, allDay = parseEventTime(item.Start)
	out.End, _ = parseEventTime(item.End)
	out.IsAllDay = allDay

	if item.Organizer != nil {
		out.OrganizerEmail = item.Organizer.Email
		out.OrganizerName = item.Organizer.DisplayName
	}
	if ts, err := time.Parse(time.RFC3339Nano, item.Updated); err == nil {
		out.LastModified = ts.UTC()
	}
	return out
}

// eventKey scopes a Google event id to the calendar it was read from.
// Every attendee's copy of a meeting carries the same event id.
func eventKey(principalName, id string) string {
	if id == "" {
		return ""
	}
	return principalName + "/" + id
}

// parseEventTime returns the instant and whether the value is a whole-day date.
func parseEventTime(v *calendar.EventDateTime) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	if v.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, v.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), false
	}
	if v.Date != "" {
		ts, err := time.Parse(time.DateOnly, v.Date)
		if err != nil {
			return time.Time{}, true
		}
		return ts, true
	}
	return time.Time{}, false
}
