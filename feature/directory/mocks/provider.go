package mocks

import (
	"context"

	"calendar-sync/feature/directory"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of directory.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) ListUsers(ctx context.Context) ([]directory.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]directory.User)
	return users, args.Error(1)
}

func (m *Provider) ListUserEvents(ctx context.Context, principalName string) ([]directory.Event, error) {
	args := m.Called(ctx, principalName)
	events, _ := args.Get(0).([]directory.Event)
	return events, args.Error(1)
}

func (m *Provider) HasEvents(ctx context.Context, principalName string) (bool, error) {
	args := m.Called(ctx, principalName)
	return args.Bool(0), args.Error(1)
}
