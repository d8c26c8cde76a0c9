package sync

import (
	"context"
	"testing"
	"time"

	"calendar-sync/core/database"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calendar/calendartest"
	"calendar-sync/feature/directory"
	"calendar-sync/feature/directory/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type runnerFixture struct {
	store    *calendar.Store
	provider *mocks.Provider
	locker   *database.LocalLocker
	runner   *Runner
}

func newRunnerFixture(t *testing.T, cfg Config) *runnerFixture {
	t.Helper()

	if cfg.LockName == "" {
		cfg.LockName = "test-lock"
	}
	f := &runnerFixture{
		store:    calendartest.NewStore(t),
		provider: new(mocks.Provider),
		locker:   database.NewLocalLocker(),
	}
	orch := NewOrchestrator(f.store, f.provider, f.locker, cfg, zap.NewNop())
	f.runner = NewRunner(context.Background(), orch, zap.NewNop())
	return f
}

func (f *runnerFixture) statusOf(job Job) JobStatus {
	for _, st := range f.runner.Status() {
		if st.Job == job {
			return st
		}
	}
	return JobStatus{}
}

func TestRunner_RunRecordsStatus(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	f.provider.On("ListUsers", mock.Anything).Return([]directory.User{user("u1", "a@x.com")}, nil)

	summary, err := f.runner.Run(context.Background(), JobSyncUsers)
	require.NoError(t, err)
	require.NotNil(t, summary)

	st := f.statusOf(JobSyncUsers)
	assert.False(t, st.Running)
	assert.Empty(t, st.LastError)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, summary.RunID, st.LastRun.RunID)
	assert.NotNil(t, st.LastAttemptAt)
}

func TestRunner_RunUnknownJob(t *testing.T) {
	f := newRunnerFixture(t, Config{})

	_, err := f.runner.Run(context.Background(), JobUserEvents)
	assert.ErrorContains(t, err, "unknown job")
}

func TestRunner_LockHeldIsRecorded(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	release, err := f.locker.TryLock(context.Background(), "test-lock")
	require.NoError(t, err)
	defer release()

	_, err = f.runner.Run(context.Background(), JobSyncUsers)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, ErrRunInProgress.Error(), f.statusOf(JobSyncUsers).LastError)
	assert.Nil(t, f.statusOf(JobSyncUsers).LastRun)
}

func TestRunner_TriggerIgnoresRunningJob(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	unblock := make(chan struct{})
	f.provider.On("ListUsers", mock.Anything).
		Run(func(mock.Arguments) { <-unblock }).
		Return([]directory.User{}, nil)

	assert.True(t, f.runner.Trigger(JobSyncUsers))
	require.Eventually(t, func() bool { return f.runner.IsRunning(JobSyncUsers) }, time.Second, 5*time.Millisecond)
	assert.False(t, f.runner.Trigger(JobSyncUsers))

	close(unblock)
	f.runner.Wait()

	assert.False(t, f.runner.IsRunning(JobSyncUsers))
	assert.NotNil(t, f.statusOf(JobSyncUsers).LastRun)
	f.provider.AssertNumberOfCalls(t, "ListUsers", 1)
}

func TestRunner_SyncUser(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	u := calendartest.SeedUser(t, f.store, "a@x.com")
	f.provider.On("ListUserEvents", mock.Anything, "a@x.com").Return([]directory.Event{event("e1")}, nil)

	summary, err := f.runner.SyncUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EventsInserted)
	assert.NotNil(t, f.statusOf(JobUserEvents).LastRun)
}

type staticSource map[Job]*RunSummary

func (s staticSource) Latest(_ context.Context, job Job) (*RunSummary, error) {
	return s[job], nil
}

func TestRunner_Seed(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	previous := testSummary()

	f.runner.Seed(context.Background(), staticSource{JobSyncAll: previous})

	assert.Equal(t, previous, f.statusOf(JobSyncAll).LastRun)
	assert.Nil(t, f.statusOf(JobSyncUsers).LastRun)
}

func TestScheduler(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	sched := NewScheduler(f.runner, Config{IncrementalInterval: 10 * time.Millisecond}, zap.NewNop())
	require.Len(t, sched.schedules, 1)
	assert.Equal(t, JobIncremental, sched.schedules[0].job)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sched.Start(ctx))

	require.Eventually(t, func() bool {
		return f.statusOf(JobIncremental).LastRun != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	sched.Wait()
}

func TestParseJob(t *testing.T) {
	job, ok := ParseJob("sync_all")
	assert.True(t, ok)
	assert.Equal(t, JobSyncAll, job)

	_, ok = ParseJob("user_events")
	assert.False(t, ok)
}

func TestScheduler_NoSchedules(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	sched := NewScheduler(f.runner, Config{}, zap.NewNop())
	assert.Empty(t, sched.schedules)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sched.Start(ctx))
	cancel()
	sched.Wait()
	assert.Nil(t, f.statusOf(JobIncremental).LastRun)
}
