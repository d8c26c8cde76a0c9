package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"calendar-sync/feature/directory"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	kiotaauth "github.com/microsoft/kiota-authentication-azure-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	"go.uber.org/zap"
)

var (
	userFields  = []string{"id", "displayName", "givenName", "surname", "mail", "userPrincipalName", "jobTitle", "department", "officeLocation"}
	eventFields = []string{"id", "subject", "bodyPreview", "start", "end", "location", "isAllDay", "organizer", "lastModifiedDateTime"}
	presenceFields = []string{"id"}
)

// Client implements directory.Provider over the Microsoft Graph SDK.
type Client struct {
	graph   *msgraphsdk.GraphServiceClient
	cfg     directory.GraphConfig
	timeout time.Duration
	logger  *zap.Logger
}

var _ directory.Provider = (*Client)(nil)

// New creates a Graph client authenticated with the client-credentials flow.
func New(cfg directory.GraphConfig, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, &azidentity.ClientSecretCredentialOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: cloud.Configuration{ActiveDirectoryAuthorityHost: cfg.AuthorityHost()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create graph credential: %w", err)
	}

	auth, err := kiotaauth.NewAzureIdentityAuthenticationProviderWithScopes(cred, []string{cfg.Scope()})
	if err != nil {
		return nil, fmt.Errorf("failed to create graph authentication provider: %w", err)
	}

	adapter, err := msgraphsdk.NewGraphRequestAdapter(auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph request adapter: %w", err)
	}

	return NewWithAdapter(cfg, adapter, timeout, logger), nil
}

// NewWithAdapter creates a client over a prepared request adapter.
// The adapter is pointed at cfg.BaseURL when set.
func NewWithAdapter(cfg directory.GraphConfig, adapter *msgraphsdk.GraphRequestAdapter, timeout time.Duration, logger *zap.Logger) *Client {
	if cfg.UsersPageSize <= 0 {
		cfg.UsersPageSize = 999
	}
	if cfg.EventsPageSize <= 0 {
		cfg.EventsPageSize = 1000
	}
	if cfg.BaseURL != "" {
		adapter.SetBaseUrl(cfg.BaseURL)
	}
	return &Client{
		graph:   msgraphsdk.NewGraphServiceClient(adapter),
		cfg:     cfg,
		timeout: timeout,
		logger:  logger,
	}
}

// withTimeout bounds one provider call, paging included.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// utcHeaders asks Graph for event times in UTC instead of the mailbox time zone.
func utcHeaders() *abstractions.RequestHeaders {
	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)
	return headers
}

// ListUsers returns every user, following @odata.nextLink pages.
func (c *Client) ListUsers(ctx context.Context) ([]directory.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	top := int32(c.cfg.UsersPageSize)
	page, err := c.graph.Users().Get(ctx, &users.UsersRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.UsersRequestBuilderGetQueryParameters{
			Select: userFields,
			Top:    &top,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	iterator, err := msgraphcore.NewPageIterator[models.Userable](page, c.graph.GetAdapter(), models.CreateUserCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to page users: %w", err)
	}

	var out []directory.User
	err = iterator.Iterate(ctx, func(u models.Userable) bool {
		out = append(out, toUser(u))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	c.logger.Debug("Fetched users from Graph", zap.Int("count", len(out)))
	return out, nil
}

// ListUserEvents returns the events of the user's default calendar.
func (c *Client) ListUserEvents(ctx context.Context, principalName string) ([]directory.Event, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	top := int32(c.cfg.EventsPageSize)
	page, err := c.graph.Users().ByUserId(principalName).Calendar().Events().Get(ctx, &users.ItemCalendarEventsRequestBuilderGetRequestConfiguration{
		Headers: utcHeaders(),
		QueryParameters: &users.ItemCalendarEventsRequestBuilderGetQueryParameters{
			Select: eventFields,
			Top:    &top,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", principalName, err)
	}

	iterator, err := msgraphcore.NewPageIterator[models.Eventable](page, c.graph.GetAdapter(), models.CreateEventCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to page events for %s: %w", principalName, err)
	}
	iterator.SetHeaders(utcHeaders())

	var out []directory.Event
	err = iterator.Iterate(ctx, func(e models.Eventable) bool {
		out = append(out, toEvent(e))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", principalName, err)
	}

	return out, nil
}

// HasEvents asks for at most one event id. A missing mailbox or a
// denied calendar counts as having no events.
func (c *Client) HasEvents(ctx context.Context, principalName string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	top := int32(1)
	page, err := c.graph.Users().ByUserId(principalName).Calendar().Events().Get(ctx, &users.ItemCalendarEventsRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemCalendarEventsRequestBuilderGetQueryParameters{
			Select: presenceFields,
			Top:    &top,
		},
	})

	switch code := StatusCode(err); {
	case err == nil:
		return len(page.GetValue()) > 0, nil
	case code == http.StatusNotFound:
		c.logger.Debug("User not found or has no calendar", zap.String("principal", principalName))
		return false, nil
	case code == http.StatusForbidden:
		c.logger.Warn("No permission to access calendar", zap.String("principal", principalName))
		return false, nil
	default:
		return false, fmt.Errorf("failed to check events for %s: %w", principalName, err)
	}
}

// StatusCode returns the HTTP status carried by a Graph error, or 0.
func StatusCode(err error) int {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		return odataErr.ResponseStatusCode
	}
	var apiErr *abstractions.ApiError
	if errors.As(err, &apiErr) {
		return apiErr.ResponseStatusCode
	}
	return 0
}

func toUser(u models.Userable) directory.User {
	return directory.User{
		ExternalID:     deref(u.GetId()),
		PrincipalName:  deref(u.GetUserPrincipalName()),
		DisplayName:    deref(u.GetDisplayName()),
		GivenName:      deref(u.GetGivenName()),
		Surname:        deref(u.GetSurname()),
		Mail:           deref(u.GetMail()),
		JobTitle:       deref(u.GetJobTitle()),
		Department:     deref(u.GetDepartment()),
		OfficeLocation: deref(u.GetOfficeLocation()),
	}
}

func toEvent(e models.Eventable) directory.Event {
	out := directory.Event{
		ExternalID:  deref(e.GetId()),
		Subject:     deref(e.GetSubject()),
		BodyPreview: deref(e.GetBodyPreview()),
		Start:       parseDateTime(e.GetStart()),
		End:         parseDateTime(e.GetEnd()),
	}
	if allDay := e.GetIsAllDay(); allDay != nil {
		out.IsAllDay = *allDay
	}
	if loc := e.GetLocation(); loc != nil {
		out.Location = deref(loc.GetDisplayName())
	}
	if org := e.GetOrganizer(); org != nil && org.GetEmailAddress() != nil {
		out.OrganizerEmail = deref(org.GetEmailAddress().GetAddress())
		out.OrganizerName = deref(org.GetEmailAddress().GetName())
	}
	if ts := e.GetLastModifiedDateTime(); ts != nil {
		out.LastModified = ts.UTC()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// graphDateTime is the layout of dateTimeTimeZone.dateTime (seven fractional digits, no offset).
const graphDateTime = "2006-01-02T15:04:05.9999999"

// parseDateTime returns the zero time when the value is missing or malformed.
func parseDateTime(v models.DateTimeTimeZoneable) time.Time {
	if v == nil {
		return time.Time{}
	}
	raw := deref(v.GetDateTime())
	if raw == "" {
		return time.Time{}
	}

	loc := time.UTC
	if tz := deref(v.GetTimeZone()); tz != "" && tz != "UTC" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	ts, err := time.ParseInLocation(graphDateTime, raw, loc)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
