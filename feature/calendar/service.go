package calendar

import (
	"context"

	"calendar-sync/feature/calendar/models"

	"go.uber.org/zap"
)

// Service serves the read side of the calendar store.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService creates a new read service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListUsers returns every user with its event count.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.ListUserSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return users, nil
}

// GetUserWithEvents loads a user and then its events. ErrNotFound when the id is unknown.
func (s *Service) GetUserWithEvents(ctx context.Context, id string) (*models.UserWithEvents, error) {
	user, err := s.store.GetUserSummary(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListEventsByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.UserWithEvents{User: *user, Events: events}, nil
}

// GetEventsByUser returns the events of a user. An unknown id yields an empty list.
func (s *Service) GetEventsByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	return s.store.ListEventsByUser(ctx, userID)
}
