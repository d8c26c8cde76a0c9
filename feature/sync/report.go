package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"calendar-sync/core/notify"
	"calendar-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

const reportPrefix = "reports"

// Archive stores run summaries as JSON objects under reports/<job>/.
// Object names sort chronologically.
type Archive struct {
	client storage.Client
	bucket string
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// ObjectName returns the object key of a summary, e.g.
// "reports/sync_all/20250301T090000Z-<run id>.json".
func ObjectName(s *RunSummary) string {
	name := fmt.Sprintf("%s-%s.json", s.StartedAt.UTC().Format("20060102T150405Z"), s.RunID)
	return path.Join(reportPrefix, string(s.Job), name)
}

// Record uploads the summary.
func (a *Archive) Record(ctx context.Context, s *RunSummary) error {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, ObjectName(s), bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload run summary: %w", err)
	}
	return nil
}

// Latest returns the most recent archived summary of job, or nil when none exists.
func (a *Archive) Latest(ctx context.Context, job Job) (*RunSummary, error) {
	prefix := path.Join(reportPrefix, string(job)) + "/"

	var latest string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list run summaries: %w", obj.Err)
		}
		if obj.Key > latest {
			latest = obj.Key
		}
	}
	if latest == "" {
		return nil, nil
	}

	reader, err := a.client.GetObject(ctx, a.bucket, latest, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download run summary %s: %w", latest, err)
	}
	defer reader.Close()

	var s RunSummary
	if err := json.NewDecoder(reader).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode run summary %s: %w", latest, err)
	}
	return &s, nil
}

// Publisher is the subset of notify.Publisher used for run notifications.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// RunEvent is the message published when a run finishes.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	Job         Job       `json:"job"`
	Status      string    `json:"status"`
	FinishedAt  time.Time `json:"finished_at"`
	Duration    string    `json:"duration"`
	UsersSynced int       `json:"users_synced"`
	UsersFailed int       `json:"users_failed"`
	Error       string    `json:"error,omitempty"`
}

// Notifier publishes a RunEvent for every finished run.
type Notifier struct {
	publisher Publisher
	cfg       notify.Config
}

// NewNotifier creates a notifier using cfg for routing keys.
func NewNotifier(publisher Publisher, cfg notify.Config) *Notifier {
	return &Notifier{publisher: publisher, cfg: cfg}
}

// Record publishes the run event with routing key <prefix>.<job>.
func (n *Notifier) Record(ctx context.Context, s *RunSummary) error {
	return n.publisher.Publish(ctx, n.cfg.RoutingKey(string(s.Job)), newRunEvent(s))
}

func newRunEvent(s *RunSummary) RunEvent {
	status := "succeeded"
	switch {
	case s.Error != "":
		status = "failed"
	case s.UsersFailed() > 0:
		status = "partial"
	}
	return RunEvent{
		RunID:       s.RunID,
		Job:         s.Job,
		Status:      status,
		FinishedAt:  s.FinishedAt,
		Duration:    s.Duration,
		UsersSynced: s.UsersSynced,
		UsersFailed: s.UsersFailed(),
		Error:       s.Error,
	}
}
