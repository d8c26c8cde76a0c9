package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calendar-sync/core/database"
	"calendar-sync/core/logger"
	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calendar/models"
	"calendar-sync/feature/directory"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when another run holds the run lock.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// ReportSink receives the summary of every finished run.
type ReportSink interface {
	Record(ctx context.Context, summary *RunSummary) error
}

// Orchestrator drives the sync entry points. Every entry point holds the run
// lock for its duration and processes users one at a time.
type Orchestrator struct {
	store    *calendar.Store
	provider directory.Provider
	users    *UserReconciler
	events   *EventReconciler
	locker   database.Locker
	cfg      Config
	logger   *zap.Logger
	sinks    []ReportSink

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator wires the reconcilers over store and provider.
func NewOrchestrator(store *calendar.Store, provider directory.Provider, locker database.Locker, cfg Config, logger *zap.Logger, sinks ...ReportSink) *Orchestrator {
	opts := reconcile.Options{
		Threshold: cfg.BatchThreshold,
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
	}

	userRec := reconcile.New[models.DirectoryUser](store.DB(), userAdapter{}, opts)
	eventRec := reconcile.New[models.CalendarEvent](store.DB(), eventAdapter{}, opts)

	return &Orchestrator{
		store:    store,
		provider: provider,
		users:    NewUserReconciler(provider, userRec, logger),
		events:   NewEventReconciler(store, provider, eventRec, logger),
		locker:   locker,
		cfg:      cfg,
		logger:   logger,
		sinks:    sinks,
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    sleepContext,
	}
}

// SyncUsers reconciles the user directory. Any failure is fatal.
func (o *Orchestrator) SyncUsers(ctx context.Context) (*RunSummary, error) {
	return o.run(ctx, JobSyncUsers, func(ctx context.Context, s *RunSummary, l *zap.Logger) error {
		outcome, err := o.users.SyncAllUsers(ctx)
		if err != nil {
			return err
		}
		s.Users = &outcome
		return nil
	})
}

// SyncAllData reconciles users and then the events of every local user.
// A user whose event sync fails is recorded in FailedUsers and the loop continues.
func (o *Orchestrator) SyncAllData(ctx context.Context) (*RunSummary, error) {
	return o.run(ctx, JobSyncAll, func(ctx context.Context, s *RunSummary, l *zap.Logger) error {
		outcome, err := o.users.SyncAllUsers(ctx)
		if err != nil {
			return fmt.Errorf("users phase failed: %w", err)
		}
		s.Users = &outcome

		users, err := o.store.ListUsers(ctx)
		if err != nil {
			return err
		}

		l.Info("Syncing events", zap.Int("users", len(users)))
		for i := range users {
			if err := ctx.Err(); err != nil {
				s.Cancelled = true
				return err
			}

			u := &users[i]
			s.UsersProcessed++

			ev, err := o.events.SyncUserEvents(ctx, u.ID)
			if err != nil {
				l.Error("Failed to sync user events",
					zap.String("phase", "events"),
					zap.String("user_id", u.ID),
					zap.String("principal", u.PrincipalName),
					zap.Error(err),
				)
				s.addFailure(u.ID, u.PrincipalName, err)
			} else {
				s.addEvents(ev)
			}
			o.progress(l, s.UsersProcessed, len(users))
		}
		return nil
	})
}

// IncrementalEventCheck checks every stale user and syncs the events of those
// reporting any. Users without events get their bookkeeping reset without a fetch.
func (o *Orchestrator) IncrementalEventCheck(ctx context.Context) (*RunSummary, error) {
	return o.run(ctx, JobIncremental, func(ctx context.Context, s *RunSummary, l *zap.Logger) error {
		users, err := o.store.ListUsersWithPrincipal(ctx)
		if err != nil {
			return err
		}

		now := o.now()
		stale := make([]models.DirectoryUser, 0, len(users))
		for _, u := range users {
			if IsFresh(u.LastEventCheckAt, now, o.cfg.StalenessWindow) {
				s.UsersFresh++
				continue
			}
			stale = append(stale, u)
		}

		l.Info("Checking stale users",
			zap.Int("stale", len(stale)),
			zap.Int("fresh", s.UsersFresh),
		)

		for i := range stale {
			if err := ctx.Err(); err != nil {
				s.Cancelled = true
				return err
			}
			if i > 0 && o.cfg.Throttle > 0 {
				if err := o.sleep(ctx, o.cfg.Throttle); err != nil {
					s.Cancelled = true
					return err
				}
			}

			u := &stale[i]
			s.UsersProcessed++
			if err := o.checkUser(ctx, u, s); err != nil {
				l.Error("Failed to check user events",
					zap.String("phase", "incremental"),
					zap.String("user_id", u.ID),
					zap.String("principal", u.PrincipalName),
					zap.Error(err),
				)
				s.addFailure(u.ID, u.PrincipalName, err)
			}
			o.progress(l, s.UsersProcessed, len(stale))
		}
		return nil
	})
}

// checkUser runs the incremental step for one user. Bookkeeping is persisted
// only when the step succeeds, so a failed user stays stale.
func (o *Orchestrator) checkUser(ctx context.Context, u *models.DirectoryUser, s *RunSummary) error {
	now := o.now()
	u.LastEventCheckAt = &now
	s.UsersChecked++

	has, err := o.provider.HasEvents(ctx, u.PrincipalName)
	if err != nil {
		return fmt.Errorf("failed to check events: %w", err)
	}

	if has {
		s.UsersWithEvents++
		ev, err := o.events.SyncUserEvents(ctx, u.ID)
		if err != nil {
			return err
		}
		s.addEvents(ev)
		return o.store.SaveBookkeeping(ctx, u, "last_event_check_at")
	}

	u.LastSyncedAt = now
	u.EventCount = 0
	return o.store.SaveBookkeeping(ctx, u, "last_event_check_at", "last_synced_at", "event_count")
}

// SyncUser reconciles the events of one user by internal id.
func (o *Orchestrator) SyncUser(ctx context.Context, userID string) (*RunSummary, error) {
	return o.run(ctx, JobUserEvents, func(ctx context.Context, s *RunSummary, l *zap.Logger) error {
		s.UsersProcessed++
		ev, err := o.events.SyncUserEvents(ctx, userID)
		if err != nil {
			return err
		}
		s.addEvents(ev)
		return nil
	})
}

// SyncUserEventsByPrincipal is reserved for on-demand sync by principal name.
// It performs no work.
func (o *Orchestrator) SyncUserEventsByPrincipal(ctx context.Context, principalName string) (*RunSummary, error) {
	return o.run(ctx, JobPrincipalEvents, func(ctx context.Context, s *RunSummary, l *zap.Logger) error {
		l.Info("Per-principal event sync is not implemented, nothing to do", zap.String("principal", principalName))
		return nil
	})
}

// PurgeUserEvents deletes every stored event of a user under the run lock.
func (o *Orchestrator) PurgeUserEvents(ctx context.Context, userID string) (int64, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	deleted, err := o.store.DeleteEventsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	o.logger.Info("User events purged", zap.String("user_id", userID), zap.Int64("deleted", deleted))
	return deleted, nil
}

func (o *Orchestrator) acquire(ctx context.Context) (func(), error) {
	release, err := o.locker.TryLock(ctx, o.cfg.LockName)
	if errors.Is(err, database.ErrLockHeld) {
		return nil, ErrRunInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return release, nil
}

// run holds the run lock around fn and reports the finished summary.
func (o *Orchestrator) run(ctx context.Context, job Job, fn func(context.Context, *RunSummary, *zap.Logger) error) (*RunSummary, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	s := newSummary(job, o.now())
	l := logger.ForJob(o.logger, string(job), s.RunID)
	l.Info("Sync run started")

	err = fn(ctx, s, l)
	s.finish(o.now(), err)

	if err != nil {
		l.Error("Sync run failed", zap.String("duration", s.Duration), zap.Error(err))
	} else {
		l.Info("Sync run completed",
			zap.String("duration", s.Duration),
			zap.Int("users_processed", s.UsersProcessed),
			zap.Int("users_synced", s.UsersSynced),
			zap.Int("users_failed", s.UsersFailed()),
			zap.Int("users_checked", s.UsersChecked),
			zap.Int("users_with_events", s.UsersWithEvents),
		)
	}

	o.report(context.WithoutCancel(ctx), s, l)
	return s, err
}

func (o *Orchestrator) report(ctx context.Context, s *RunSummary, l *zap.Logger) {
	for _, sink := range o.sinks {
		if err := sink.Record(ctx, s); err != nil {
			l.Warn("Failed to record run summary", zap.Error(err))
		}
	}
}

func (o *Orchestrator) progress(l *zap.Logger, done, total int) {
	if o.cfg.ProgressEvery > 0 && done%o.cfg.ProgressEvery == 0 {
		l.Info("Sync progress", zap.Int("processed", done), zap.Int("total", total))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
