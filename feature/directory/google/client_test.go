package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calendar-sync/feature/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	adminSvc, err := admin.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	calendarFor := func(ctx context.Context, principalName string) (*calendar.Service, error) {
		return calendar.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/calendar/v3/"))
	}

	return NewWithServices(directory.GoogleConfig{}, adminSvc, calendarFor, zap.NewNop())
}

func TestListUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users"), r.URL.Path)
		assert.Equal(t, "my_customer", r.URL.Query().Get("customer"))
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"users":[{"id":"1","primaryEmail":"ana@school.org","name":{"fullName":"Ana Lima","givenName":"Ana","familyName":"Lima"},
				"organizations":[{"title":"Instructor","department":"Math"}],"locations":[{"buildingId":"B2"}]}],"nextPageToken":"p2"}`)
			return
		}
		fmt.Fprint(w, `{"users":[{"id":"2","primaryEmail":"rui@school.org"}]}`)
	})

	users, err := client.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, directory.User{
		ExternalID:     "1",
		PrincipalName:  "ana@school.org",
		DisplayName:    "Ana Lima",
		GivenName:      "Ana",
		Surname:        "Lima",
		Mail:           "ana@school.org",
		JobTitle:       "Instructor",
		Department:     "Math",
		OfficeLocation: "B2",
	}, users[0])
	assert.Equal(t, "rui@school.org", users[1].PrincipalName)
	assert.Equal(t, "rui@school.org", users[1].DisplayName)
}

func TestListUserEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":"e1","summary":"Class","description":"Algebra","location":"Room 1",
			 "start":{"dateTime":"2025-03-10T09:00:00-03:00"},"end":{"dateTime":"2025-03-10T10:00:00-03:00"},
			 "organizer":{"email":"ana@school.org","displayName":"Ana"},"updated":"2025-03-01T10:00:00.000Z"},
			{"id":"e2","summary":"Holiday","start":{"date":"2025-04-21"},"end":{"date":"2025-04-22"}}
		]}`)
	})

	events, err := client.ListUserEvents(context.Background(), "ana@school.org")

	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "ana@school.org/e1", events[0].ExternalID)
	assert.Equal(t, "Algebra", events[0].BodyPreview)
	assert.True(t, events[0].Start.Equal(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
	assert.False(t, events[0].IsAllDay)
	assert.Equal(t, "ana@school.org", events[0].OrganizerEmail)
	assert.True(t, events[0].LastModified.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))

	assert.True(t, events[1].IsAllDay)
	assert.True(t, events[1].Start.Equal(time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC)))
}

func TestListUserEvents_SharedMeetingKeyedPerCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"id":"shared","summary":"Council",
			"start":{"dateTime":"2025-03-10T09:00:00Z"},"end":{"dateTime":"2025-03-10T10:00:00Z"}}]}`)
	})

	ana, err := client.ListUserEvents(context.Background(), "ana@school.org")
	require.NoError(t, err)
	rui, err := client.ListUserEvents(context.Background(), "rui@school.org")
	require.NoError(t, err)

	require.Len(t, ana, 1)
	require.Len(t, rui, 1)
	assert.Equal(t, "ana@school.org/shared", ana[0].ExternalID)
	assert.Equal(t, "rui@school.org/shared", rui[0].ExternalID)
	assert.NotEqual(t, ana[0].ExternalID, rui[0].ExternalID)
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "ana@school.org/e1", eventKey("ana@school.org", "e1"))
	assert.Empty(t, eventKey("ana@school.org", ""))
}

func TestHasEvents(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{"Has events", http.StatusOK, `{"items":[{"id":"e1"}]}`, true, false},
		{"Empty", http.StatusOK, `{"items":[]}`, false, false},
		{"Not found", http.StatusNotFound, `{"error":{"code":404,"message":"Not Found"}}`, false, false},
		{"Forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"Forbidden"}}`, false, false},
		{"Server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1", r.URL.Query().Get("maxResults"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			got, err := client.HasEvents(context.Background(), "ana@school.org")

			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
