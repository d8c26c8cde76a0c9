package sync

import (
	"strings"
	"testing"
	"time"

	"calendar-sync/feature/calendar/models"
	"calendar-sync/feature/directory"

	"github.com/stretchr/testify/assert"
)

func TestToUserModel(t *testing.T) {
	u := toUserModel(directory.User{
		ExternalID:    "u1",
		PrincipalName: "a@x.com",
		DisplayName:   "Ana",
		JobTitle:      strings.Repeat("j", 150),
	})

	assert.Equal(t, "u1", u.ExternalID)
	assert.Equal(t, "a@x.com", u.PrincipalName)
	assert.Equal(t, "Ana", u.DisplayName)
	assert.Len(t, u.JobTitle, models.ProfileFieldSize)
	assert.Empty(t, u.ID)
	assert.Empty(t, u.PasswordHash)
}

func TestToEventModel(t *testing.T) {
	lisbon := time.FixedZone("WEST", 3600)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, lisbon)

	e := toEventModel(directory.Event{
		ExternalID:   "e1",
		Subject:      "  ",
		BodyPreview:  strings.Repeat("é", 600),
		Start:        start,
		End:          start.Add(time.Hour),
		LastModified: start,
	}, "user-1")

	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, models.DefaultSubject, e.Subject)
	assert.Equal(t, models.BodyPreviewSize, len([]rune(e.BodyPreview)))
	assert.Equal(t, time.UTC, e.Start.Location())
	assert.True(t, e.Start.Equal(start))
}

func TestUserAdapter_UpdateColumnsExcludeProtectedFields(t *testing.T) {
	cols := userAdapter{}.UpdateColumns()

	assert.Contains(t, cols, "last_synced_at")
	assert.NotContains(t, cols, "password_hash")
	assert.NotContains(t, cols, "id")
	assert.NotContains(t, cols, "created_at")
	assert.NotContains(t, cols, "event_count")
	assert.NotContains(t, cols, "last_event_check_at")
}

func TestEventAdapter_Overwrite(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)

	dst := models.CalendarEvent{ID: "keep", UserID: "owner", Subject: "old", CreatedAt: created}
	src := models.CalendarEvent{ID: "other", UserID: "someone-else", Subject: "new"}

	eventAdapter{}.Overwrite(&dst, &src, now)

	assert.Equal(t, "keep", dst.ID)
	assert.Equal(t, "owner", dst.UserID)
	assert.Equal(t, "new", dst.Subject)
	assert.Equal(t, created, dst.CreatedAt)
	assert.Equal(t, now, dst.LastUpdatedAt)
}
