package sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"calendar-sync/feature/calendar/calendartest"
	"calendar-sync/feature/directory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupHandlerApp(t *testing.T) (*fiber.App, *runnerFixture) {
	f := newRunnerFixture(t, Config{})
	app := fiber.New()
	NewHandler(f.runner, f.store.DB(), zap.NewNop()).RegisterRoutes(app)
	return app, f
}

func decodeMap(t *testing.T, body io.Reader) map[string]any {
	var m map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&m))
	return m
}

func TestHandleTrigger(t *testing.T) {
	app, f := setupHandlerApp(t)
	f.provider.On("ListUsers", mock.Anything).Return([]directory.User{user("u1", "a@x.com")}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/users", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	body := decodeMap(t, resp.Body)
	assert.Equal(t, "sync_users", body["job"])
	assert.Equal(t, "accepted", body["status"])

	f.runner.Wait()
	f.provider.AssertCalled(t, "ListUsers", mock.Anything)
}

func TestHandleStatus(t *testing.T) {
	app, _ := setupHandlerApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var statuses []JobStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Len(t, statuses, 4)
}

func TestHandleSyncUserEvents(t *testing.T) {
	app, f := setupHandlerApp(t)
	u := calendartest.SeedUser(t, f.store, "a@x.com")
	f.provider.On("ListUserEvents", mock.Anything, "a@x.com").Return([]directory.Event{event("e1")}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/events/"+u.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary RunSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 1, summary.EventsInserted)
}

func TestHandleSyncUserEvents_NotFound(t *testing.T) {
	app, _ := setupHandlerApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/events/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleSyncUserEvents_Conflict(t *testing.T) {
	app, f := setupHandlerApp(t)
	u := calendartest.SeedUser(t, f.store, "a@x.com")
	release, err := f.locker.TryLock(context.Background(), "test-lock")
	require.NoError(t, err)
	defer release()

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/events/"+u.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleSyncUserEvents_ProviderError(t *testing.T) {
	app, f := setupHandlerApp(t)
	u := calendartest.SeedUser(t, f.store, "a@x.com")
	f.provider.On("ListUserEvents", mock.Anything, "a@x.com").Return(nil, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/events/"+u.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeMap(t, resp.Body)["error"], assert.AnError.Error())
}

func TestHandlePurgeUserEvents(t *testing.T) {
	app, f := setupHandlerApp(t)
	u := calendartest.SeedUser(t, f.store, "a@x.com")
	calendartest.SeedEvent(t, f.store, u.ID, "e1", time.Now())
	calendartest.SeedEvent(t, f.store, u.ID, "e2", time.Now())

	resp, err := app.Test(httptest.NewRequest("DELETE", "/sync/events/"+u.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, resp.Body)["deleted"])

	resp, err = app.Test(httptest.NewRequest("DELETE", "/sync/events/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	app, _ := setupHandlerApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeMap(t, resp.Body)["status"])
}

func TestHandleHealth_MissingColumn(t *testing.T) {
	app, f := setupHandlerApp(t)
	require.NoError(t, f.store.DB().Exec("ALTER TABLE calendar_events DROP COLUMN location").Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var report HealthReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, map[string][]string{"calendar_events": {"location"}}, report.MissingColumns)
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	app, f := setupHandlerApp(t)
	sqlDB, err := f.store.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestLoader(t *testing.T) {
	f := newRunnerFixture(t, Config{})
	feature := NewFeature(f.runner, f.store.DB(), zap.NewNop())

	assert.Equal(t, "sync", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}
