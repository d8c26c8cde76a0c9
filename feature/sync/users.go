package sync

import (
	"context"
	"fmt"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar/models"
	"calendar-sync/feature/directory"

	"go.uber.org/zap"
)

// UserOutcome summarizes one pass of the user reconciler.
type UserOutcome struct {
	// Fetched is the number of users returned by the provider.
	Fetched int `json:"fetched"`
	// Skipped counts users without an external id or principal name.
	Skipped int `json:"skipped"`
	reconcile.Result
}

// UserReconciler mirrors the provider's user directory into the store.
type UserReconciler struct {
	provider   directory.Provider
	reconciler *reconcile.Reconciler[models.DirectoryUser]
	logger     *zap.Logger
}

// NewUserReconciler creates a user reconciler writing through reconciler.
func NewUserReconciler(provider directory.Provider, reconciler *reconcile.Reconciler[models.DirectoryUser], logger *zap.Logger) *UserReconciler {
	return &UserReconciler{provider: provider, reconciler: reconciler, logger: logger}
}

// SyncAllUsers fetches every provider user and reconciles the batch by external id.
func (r *UserReconciler) SyncAllUsers(ctx context.Context) (UserOutcome, error) {
	users, err := r.provider.ListUsers(ctx)
	if err != nil {
		return UserOutcome{}, fmt.Errorf("failed to list users from provider: %w", err)
	}

	outcome := UserOutcome{Fetched: len(users)}
	batch := make([]models.DirectoryUser, 0, len(users))
	for _, u := range users {
		if u.ExternalID == "" || u.PrincipalName == "" {
			outcome.Skipped++
			r.logger.Debug("Skipping user without identity",
				zap.String("external_id", u.ExternalID),
				zap.String("principal", u.PrincipalName),
			)
			continue
		}
		batch = append(batch, toUserModel(u))
	}

	result, err := r.reconciler.Reconcile(ctx, batch)
	if err != nil {
		return outcome, fmt.Errorf("failed to reconcile users: %w", err)
	}
	outcome.Result = result

	r.logger.Info("Users reconciled",
		zap.Int("fetched", outcome.Fetched),
		zap.Int("skipped", outcome.Skipped),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.String("strategy", string(result.Strategy)),
		zap.Bool("fell_back", result.FellBack),
	)
	return outcome, nil
}
