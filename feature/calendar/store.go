package calendar

import (
	"context"
	"errors"
	"fmt"

	"calendar-sync/feature/calendar/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a user id does not exist.
var ErrNotFound = errors.New("user not found")

// Store provides record-level access to users and events.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// GetUser loads a user by internal id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &user, nil
}

// ListUsers returns every user ordered by principal name.
func (s *Store) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	var users []models.DirectoryUser
	if err := s.db.WithContext(ctx).Order("principal_name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListUsersWithPrincipal returns users that can be addressed at the provider.
func (s *Store) ListUsersWithPrincipal(ctx context.Context) ([]models.DirectoryUser, error) {
	var users []models.DirectoryUser
	err := s.db.WithContext(ctx).
		Where("principal_name IS NOT NULL AND principal_name <> ?", "").
		Order("principal_name").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with principal: %w", err)
	}
	return users, nil
}

const summaryColumns = `users.id, users.principal_name, users.display_name, users.given_name, users.surname,
	users.mail, users.job_title, users.department, users.office_location, users.last_synced_at,
	users.last_event_check_at, COUNT(calendar_events.id) AS event_count`

// ListUserSummaries returns every user with a live event count.
func (s *Store) ListUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	var rows []models.UserSummary
	err := s.summaryQuery(ctx).
		Group("users.id").
		Order("users.display_name, users.principal_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with event counts: %w", err)
	}
	return rows, nil
}

// GetUserSummary returns one user with a live event count.
func (s *Store) GetUserSummary(ctx context.Context, id string) (*models.UserSummary, error) {
	var rows []models.UserSummary
	err := s.summaryQuery(ctx).
		Where("users.id = ?", id).
		Group("users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) summaryQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("users").
		Select(summaryColumns).
		Joins("LEFT JOIN calendar_events ON calendar_events.user_id = users.id")
}

// ListEventsByUser returns the events of a user ordered by start and end.
func (s *Store) ListEventsByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	events := []models.CalendarEvent{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time, end_time").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user %s: %w", userID, err)
	}
	return events, nil
}

// CountEventsByUser counts the stored events of a user.
func (s *Store) CountEventsByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CalendarEvent{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count events for user %s: %w", userID, err)
	}
	return n, nil
}

// RefreshEventCount recomputes the cached event count of a user.
func (s *Store) RefreshEventCount(ctx context.Context, userID string) (int, error) {
	n, err := s.CountEventsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	err = s.db.WithContext(ctx).Model(&models.DirectoryUser{}).
		Where("id = ?", userID).
		Update("event_count", n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to update event count for user %s: %w", userID, err)
	}
	return int(n), nil
}

// SaveBookkeeping persists the listed columns of user.
func (s *Store) SaveBookkeeping(ctx context.Context, user *models.DirectoryUser, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error; err != nil {
		return fmt.Errorf("failed to save bookkeeping for user %s: %w", user.ID, err)
	}
	return nil
}

// DeleteEventsByUser removes every event of a user and resets its cached count.
func (s *Store) DeleteEventsByUser(ctx context.Context, userID string) (int64, error) {
	var deleted int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.DirectoryUser{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		res := tx.Where("user_id = ?", userID).Delete(&models.CalendarEvent{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected

		return tx.Model(&models.DirectoryUser{}).Where("id = ?", userID).Update("event_count", 0).Error
	})
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete events for user %s: %w", userID, err)
	}
	return deleted, nil
}
