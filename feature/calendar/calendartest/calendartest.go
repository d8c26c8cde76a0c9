// Package calendartest provides an in-memory calendar store for tests.
package calendartest

import (
	"fmt"
	"testing"
	"time"

	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calendar/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewStore returns a migrated store over a private in-memory SQLite database
// with foreign keys enforced.
func NewStore(t *testing.T) *calendar.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := calendar.NewStore(db)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return store
}

// SeedUser inserts a user with the given principal name and returns it.
func SeedUser(t *testing.T, store *calendar.Store, principal string) *models.DirectoryUser {
	t.Helper()

	now := time.Now().UTC()
	user := &models.DirectoryUser{
		ID:            uuid.NewString(),
		ExternalID:    "ext-" + principal,
		PrincipalName: principal,
		DisplayName:   principal,
		CreatedAt:     now,
		LastSyncedAt:  now,
	}
	require.NoError(t, store.DB().Create(user).Error)
	return user
}

// SeedEvent inserts an event owned by userID starting at start.
func SeedEvent(t *testing.T, store *calendar.Store, userID, externalID string, start time.Time) *models.CalendarEvent {
	t.Helper()

	now := time.Now().UTC()
	event := &models.CalendarEvent{
		ID:            uuid.NewString(),
		ExternalID:    externalID,
		UserID:        userID,
		Subject:       "Event " + externalID,
		Start:         start,
		End:           start.Add(time.Hour),
		ModifiedAt:    now,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	require.NoError(t, store.DB().Create(event).Error)
	return event
}
