package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"calendar-sync/core/notify"
	"calendar-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSummary() *RunSummary {
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newSummary(JobSyncAll, started)
	s.RunID = "run-1"
	s.UsersSynced = 2
	s.finish(started.Add(90*time.Second), nil)
	return s
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "reports/sync_all/20250301T090000Z-run-1.json", ObjectName(testSummary()))
}

func TestArchive_Record(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "calendar-sync")
	s := testSummary()

	client.On("PutObject", mock.Anything, "calendar-sync", "reports/sync_all/20250301T090000Z-run-1.json",
		mock.Anything, mock.AnythingOfType("int64"),
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == "application/json" }),
	).Return(minio.UploadInfo{}, nil)

	require.NoError(t, archive.Record(context.Background(), s))
	client.AssertExpectations(t)
}

func TestArchive_RecordError(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "calendar-sync")

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket missing"))

	err := archive.Record(context.Background(), testSummary())
	assert.ErrorContains(t, err, "bucket missing")
}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestArchive_Latest(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "calendar-sync")

	stored := testSummary()
	body, err := json.Marshal(stored)
	require.NoError(t, err)

	client.On("ListObjects", mock.Anything, "calendar-sync", minio.ListObjectsOptions{Prefix: "reports/sync_all/", Recursive: true}).
		Return(objects(
			"reports/sync_all/20250228T090000Z-old.json",
			"reports/sync_all/20250301T090000Z-run-1.json",
			"reports/sync_all/20250227T090000Z-older.json",
		))
	client.On("GetObject", mock.Anything, "calendar-sync", "reports/sync_all/20250301T090000Z-run-1.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil)

	latest, err := archive.Latest(context.Background(), JobSyncAll)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-1", latest.RunID)
	assert.Equal(t, 2, latest.UsersSynced)
}

func TestArchive_LatestEmpty(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "calendar-sync")
	client.On("ListObjects", mock.Anything, "calendar-sync", mock.Anything).Return(objects())

	latest, err := archive.Latest(context.Background(), JobSyncUsers)
	require.NoError(t, err)
	assert.Nil(t, latest)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

type fakePublisher struct {
	routingKey string
	message    any
	err        error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, message any) error {
	f.routingKey = routingKey
	f.message = message
	return f.err
}

func TestNotifier_Record(t *testing.T) {
	pub := &fakePublisher{}
	notifier := NewNotifier(pub, notify.Config{RoutingKeyPrefix: "sync.run"})

	require.NoError(t, notifier.Record(context.Background(), testSummary()))
	assert.Equal(t, "sync.run.sync_all", pub.routingKey)

	event, ok := pub.message.(RunEvent)
	require.True(t, ok)
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "succeeded", event.Status)
	assert.Equal(t, 2, event.UsersSynced)
}

func TestNewRunEvent_Status(t *testing.T) {
	partial := testSummary()
	partial.addFailure("u2", "b@x.com", errors.New("boom"))
	assert.Equal(t, "partial", newRunEvent(partial).Status)

	failed := testSummary()
	failed.finish(failed.FinishedAt, errors.New("users phase failed"))
	assert.Equal(t, "failed", newRunEvent(failed).Status)
	assert.Equal(t, "users phase failed", newRunEvent(failed).Error)
}
