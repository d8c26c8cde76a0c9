package sync

import (
	"time"

	"github.com/google/uuid"
)

// Job names a sync entry point.
type Job string

const (
	// JobSyncAll syncs users and then the events of every user.
	JobSyncAll Job = "sync_all"
	// JobSyncUsers syncs the user directory only.
	JobSyncUsers Job = "sync_users"
	// JobIncremental checks stale users and syncs those with events.
	JobIncremental Job = "incremental_check"
	// JobUserEvents syncs the events of one user by internal id.
	JobUserEvents Job = "user_events"
	// JobPrincipalEvents is the reserved on-demand per-principal sync.
	JobPrincipalEvents Job = "principal_events"
)

// Jobs lists the jobs that can be enqueued without arguments.
var Jobs = []Job{JobSyncAll, JobSyncUsers, JobIncremental}

// ParseJob returns the enqueueable job named s.
func ParseJob(s string) (Job, bool) {
	for _, j := range Jobs {
		if string(j) == s {
			return j, true
		}
	}
	return "", false
}

// FailedUser records a user whose per-user step failed.
type FailedUser struct {
	UserID        string `json:"user_id"`
	PrincipalName string `json:"principal_name"`
	Error         string `json:"error"`
}

// RunSummary reports the outcome of one run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Job        Job       `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`

	Users *UserOutcome `json:"users,omitempty"`

	// UsersProcessed counts users the per-user loop attempted.
	UsersProcessed int `json:"users_processed"`
	// UsersSynced counts users whose events were reconciled.
	UsersSynced int `json:"users_synced"`
	// UsersChecked counts users checked by the incremental check.
	UsersChecked int `json:"users_checked"`
	// UsersWithEvents counts checked users reporting events.
	UsersWithEvents int `json:"users_with_events"`
	// UsersFresh counts users skipped by the staleness gate.
	UsersFresh int `json:"users_fresh"`

	EventsInserted int `json:"events_inserted"`
	EventsUpdated  int `json:"events_updated"`

	FailedUsers []FailedUser `json:"failed_users"`
	Cancelled   bool         `json:"cancelled"`
	Error       string       `json:"error,omitempty"`
}

func newSummary(job Job, now time.Time) *RunSummary {
	return &RunSummary{
		RunID:       uuid.NewString(),
		Job:         job,
		StartedAt:   now,
		FailedUsers: []FailedUser{},
	}
}

// UsersFailed returns the number of isolated per-user failures.
func (s *RunSummary) UsersFailed() int {
	return len(s.FailedUsers)
}

func (s *RunSummary) addFailure(userID, principal string, err error) {
	s.FailedUsers = append(s.FailedUsers, FailedUser{UserID: userID, PrincipalName: principal, Error: err.Error()})
}

func (s *RunSummary) addEvents(o EventOutcome) {
	s.UsersSynced++
	s.EventsInserted += o.Inserted
	s.EventsUpdated += o.Updated
}

func (s *RunSummary) finish(now time.Time, err error) {
	s.FinishedAt = now
	s.Duration = now.Sub(s.StartedAt).String()
	if err != nil {
		s.Error = err.Error()
	}
}
