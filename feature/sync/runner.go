package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// JobStatus is the last known state of a job.
type JobStatus struct {
	Job     Job         `json:"job"`
	Running bool        `json:"running"`
	LastRun *RunSummary `json:"last_run,omitempty"`
	// LastError is the error of the last attempt, including skipped attempts.
	LastError     string     `json:"last_error,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// trackedJobs are the jobs reported by Status.
var trackedJobs = []Job{JobSyncAll, JobSyncUsers, JobIncremental, JobUserEvents}

// SummarySource returns the latest stored summary of a job.
type SummarySource interface {
	Latest(ctx context.Context, job Job) (*RunSummary, error)
}

// Runner executes jobs in the background on behalf of the HTTP triggers and
// the scheduler. Concurrent requests for the same job share one execution.
type Runner struct {
	orch   *Orchestrator
	logger *zap.Logger
	ctx    context.Context
	group  singleflight.Group
	wg     gosync.WaitGroup

	mu     gosync.RWMutex
	status map[Job]*JobStatus
}

// NewRunner creates a runner whose background runs are bound to ctx.
func NewRunner(ctx context.Context, orch *Orchestrator, logger *zap.Logger) *Runner {
	status := make(map[Job]*JobStatus, len(trackedJobs))
	for _, j := range trackedJobs {
		status[j] = &JobStatus{Job: j}
	}
	return &Runner{orch: orch, logger: logger, ctx: ctx, status: status}
}

// Seed loads the last archived summary of every job into the status table.
func (r *Runner) Seed(ctx context.Context, source SummarySource) {
	for _, job := range Jobs {
		s, err := source.Latest(ctx, job)
		if err != nil {
			r.logger.Warn("Failed to load last run summary", zap.String("job", string(job)), zap.Error(err))
			continue
		}
		if s == nil {
			continue
		}
		r.mu.Lock()
		r.status[job].LastRun = s
		r.mu.Unlock()
	}
}

// Trigger starts job in the background. It returns false when the job is
// already running in this process.
func (r *Runner) Trigger(job Job) bool {
	if r.IsRunning(job) {
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.Run(r.ctx, job)
	}()
	return true
}

// Run executes job and waits for it. Concurrent callers share the execution.
func (r *Runner) Run(ctx context.Context, job Job) (*RunSummary, error) {
	if _, ok := ParseJob(string(job)); !ok {
		return nil, fmt.Errorf("unknown job %q", job)
	}

	v, err, shared := r.group.Do(string(job), func() (any, error) {
		r.setRunning(job, true)
		defer r.setRunning(job, false)

		s, err := r.dispatch(ctx, job)
		r.record(job, s, err)
		return s, err
	})
	if shared {
		r.logger.Debug("Joined running job", zap.String("job", string(job)))
	}

	s, _ := v.(*RunSummary)
	return s, err
}

// SyncUser reconciles one user's events synchronously and records the outcome.
func (r *Runner) SyncUser(ctx context.Context, userID string) (*RunSummary, error) {
	s, err := r.orch.SyncUser(ctx, userID)
	r.record(JobUserEvents, s, err)
	return s, err
}

// PurgeUserEvents deletes the stored events of a user.
func (r *Runner) PurgeUserEvents(ctx context.Context, userID string) (int64, error) {
	return r.orch.PurgeUserEvents(ctx, userID)
}

// IsRunning reports whether job is running in this process.
func (r *Runner) IsRunning(job Job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.status[job]
	return ok && st.Running
}

// Status returns a copy of the status table.
func (r *Runner) Status() []JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]JobStatus, 0, len(r.status))
	for _, j := range trackedJobs {
		out = append(out, *r.status[j])
	}
	return out
}

// Wait blocks until every triggered run has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) dispatch(ctx context.Context, job Job) (*RunSummary, error) {
	switch job {
	case JobSyncAll:
		return r.orch.SyncAllData(ctx)
	case JobSyncUsers:
		return r.orch.SyncUsers(ctx)
	case JobIncremental:
		return r.orch.IncrementalEventCheck(ctx)
	default:
		return nil, fmt.Errorf("unknown job %q", job)
	}
}

func (r *Runner) setRunning(job Job, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[job].Running = running
}

func (r *Runner) record(job Job, s *RunSummary, err error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.status[job]
	st.LastAttemptAt = &now
	st.LastError = ""
	if s != nil {
		st.LastRun = s
	}
	if err != nil {
		st.LastError = err.Error()
	}

	if errors.Is(err, ErrRunInProgress) {
		r.logger.Info("Sync run skipped, another run holds the lock", zap.String("job", string(job)))
	}
}
