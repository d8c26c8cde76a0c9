package sync

import (
	"context"
	"fmt"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calendar/models"
	"calendar-sync/feature/directory"

	"go.uber.org/zap"
)

// EventOutcome summarizes the event sync of one user.
type EventOutcome struct {
	UserID        string `json:"user_id"`
	PrincipalName string `json:"principal_name"`
	// Fetched is the number of events returned by the provider.
	Fetched int `json:"fetched"`
	// Skipped counts events without an external id.
	Skipped int `json:"skipped"`
	// EventCount is the stored event count after the sync.
	EventCount int `json:"event_count"`
	reconcile.Result
}

// EventReconciler mirrors one user's calendar into the store.
type EventReconciler struct {
	store      *calendar.Store
	provider   directory.Provider
	reconciler *reconcile.Reconciler[models.CalendarEvent]
	logger     *zap.Logger
}

// NewEventReconciler creates an event reconciler writing through reconciler.
func NewEventReconciler(store *calendar.Store, provider directory.Provider, reconciler *reconcile.Reconciler[models.CalendarEvent], logger *zap.Logger) *EventReconciler {
	return &EventReconciler{store: store, provider: provider, reconciler: reconciler, logger: logger}
}

// SyncUserEvents fetches the events of the user with internal id userID and
// reconciles them row-by-row. It returns calendar.ErrNotFound for an unknown id.
// The provider is called exactly once.
func (r *EventReconciler) SyncUserEvents(ctx context.Context, userID string) (EventOutcome, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return EventOutcome{}, err
	}

	outcome := EventOutcome{UserID: user.ID, PrincipalName: user.PrincipalName}
	if user.PrincipalName == "" {
		return outcome, fmt.Errorf("user %s has no principal name", user.ID)
	}

	events, err := r.provider.ListUserEvents(ctx, user.PrincipalName)
	if err != nil {
		return outcome, fmt.Errorf("failed to list events for %s: %w", user.PrincipalName, err)
	}
	outcome.Fetched = len(events)

	batch := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.ExternalID == "" {
			outcome.Skipped++
			continue
		}
		batch = append(batch, toEventModel(e, user.ID))
	}

	result, err := r.reconciler.ReconcileRowByRow(ctx, batch)
	if err != nil {
		return outcome, fmt.Errorf("failed to reconcile events for %s: %w", user.PrincipalName, err)
	}
	outcome.Result = result

	count, err := r.store.RefreshEventCount(ctx, user.ID)
	if err != nil {
		return outcome, err
	}
	outcome.EventCount = count

	r.logger.Debug("User events reconciled",
		zap.String("user_id", user.ID),
		zap.String("principal", user.PrincipalName),
		zap.Int("fetched", outcome.Fetched),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
	)
	return outcome, nil
}
